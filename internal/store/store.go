package store

import "github.com/hyperengineering/aequiflow/internal/types"

// Store defines the read contract for the civic dataset.
// Every accessor returns copies; callers may not mutate the canonical data.
type Store interface {
	Projects() []types.Project
	ProjectByID(id string) (types.Project, error)
	ProjectsByStatus(status types.ProjectStatus) []types.Project
	Reports() []types.Report
	ReportsByProject(projectID string) []types.Report
	ValidationItems() []types.ValidationItem
	ValidationItemByID(id string) (types.ValidationItem, error)
	Stats() types.DashboardStats
}
