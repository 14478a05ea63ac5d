package store

import (
	"fmt"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// Compile-time interface check
var _ Store = (*Dataset)(nil)

// Seed is the set of collections a Dataset is built from.
type Seed struct {
	Projects        []types.Project
	Reports         []types.Report
	ValidationItems []types.ValidationItem
	Stats           types.DashboardStats
}

// Dataset is the immutable in-memory civic dataset.
// It is safe for concurrent reads because nothing mutates it after NewDataset.
type Dataset struct {
	projects []types.Project
	reports  []types.Report
	items    []types.ValidationItem
	stats    types.DashboardStats
}

// NewDataset validates the seed and takes a private copy of it.
// Returns ErrInvalidSeed (wrapped) when a record breaks a data invariant.
func NewDataset(seed Seed) (*Dataset, error) {
	for _, p := range seed.Projects {
		if err := checkProject(p); err != nil {
			return nil, err
		}
	}
	for _, item := range seed.ValidationItems {
		if item.ConfirmCount < 0 || item.FlagCount < 0 {
			return nil, fmt.Errorf("%w: validation item %s has negative vote counts", ErrInvalidSeed, item.ID)
		}
	}

	d := &Dataset{
		projects: make([]types.Project, len(seed.Projects)),
		reports:  append([]types.Report(nil), seed.Reports...),
		items:    append([]types.ValidationItem(nil), seed.ValidationItems...),
		stats:    seed.Stats,
	}
	for i, p := range seed.Projects {
		d.projects[i] = copyProject(p)
	}
	return d, nil
}

// checkProject enforces the numeric invariants display logic relies on.
func checkProject(p types.Project) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: project without id", ErrInvalidSeed)
	case !p.Status.Valid():
		return fmt.Errorf("%w: project %s has status %q", ErrInvalidSeed, p.ID, p.Status)
	case p.Disbursed < 0 || p.Disbursed > p.Budget:
		return fmt.Errorf("%w: project %s disbursed %.2f outside [0, %.2f]", ErrInvalidSeed, p.ID, p.Disbursed, p.Budget)
	case p.Progress < 0 || p.Progress > 100:
		return fmt.Errorf("%w: project %s progress %d outside [0, 100]", ErrInvalidSeed, p.ID, p.Progress)
	case p.ValidationScore < 0 || p.ValidationScore > 100:
		return fmt.Errorf("%w: project %s validation score %d outside [0, 100]", ErrInvalidSeed, p.ID, p.ValidationScore)
	case p.ValidationCount < 0:
		return fmt.Errorf("%w: project %s has negative validation count", ErrInvalidSeed, p.ID)
	}
	return nil
}

func copyProject(p types.Project) types.Project {
	p.Timeline = append([]types.TimelineEvent(nil), p.Timeline...)
	p.Photos = append([]types.ProjectPhoto(nil), p.Photos...)
	return p
}

// Projects returns all projects in seed order.
func (d *Dataset) Projects() []types.Project {
	out := make([]types.Project, len(d.projects))
	for i, p := range d.projects {
		out[i] = copyProject(p)
	}
	return out
}

// ProjectByID returns the project with the given id or ErrNotFound.
func (d *Dataset) ProjectByID(id string) (types.Project, error) {
	for _, p := range d.projects {
		if p.ID == id {
			return copyProject(p), nil
		}
	}
	return types.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
}

// ProjectsByStatus returns the projects with the given status in seed order.
func (d *Dataset) ProjectsByStatus(status types.ProjectStatus) []types.Project {
	var out []types.Project
	for _, p := range d.projects {
		if p.Status == status {
			out = append(out, copyProject(p))
		}
	}
	return out
}

// Reports returns all reports in seed order.
func (d *Dataset) Reports() []types.Report {
	return append([]types.Report(nil), d.reports...)
}

// ReportsByProject returns the reports linked to projectID.
// Unassociated reports never match, not even for an empty projectID.
func (d *Dataset) ReportsByProject(projectID string) []types.Report {
	var out []types.Report
	if projectID == "" {
		return out
	}
	for _, r := range d.reports {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out
}

// ValidationItems returns all validation items with their seeded counts.
func (d *Dataset) ValidationItems() []types.ValidationItem {
	return append([]types.ValidationItem(nil), d.items...)
}

// ValidationItemByID returns the validation item with the given id or ErrNotFound.
func (d *Dataset) ValidationItemByID(id string) (types.ValidationItem, error) {
	for _, item := range d.items {
		if item.ID == id {
			return item, nil
		}
	}
	return types.ValidationItem{}, fmt.Errorf("validation item %q: %w", id, ErrNotFound)
}

// Stats returns the seeded dashboard snapshot.
func (d *Dataset) Stats() types.DashboardStats {
	return d.stats
}
