// Package filter derives read-only views over the civic dataset: project
// search, attention and confidence classifications, active reports and
// region enumeration. Nothing here mutates its input.
package filter

import (
	"strings"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// MatchAll is the selector value meaning "no constraint".
const MatchAll = "all"

// AttentionScoreThreshold is the validation score below which a project needs attention.
const AttentionScoreThreshold = 70

// ProjectQuery holds the list/map filter criteria.
// Empty fields (or MatchAll for Status and Region) match every project.
type ProjectQuery struct {
	Query  string
	Status string
	Region string
}

// IsZero reports whether the query constrains nothing.
func (q ProjectQuery) IsZero() bool {
	return strings.TrimSpace(q.Query) == "" && isMatchAll(q.Status) && isMatchAll(q.Region)
}

func isMatchAll(v string) bool {
	return v == "" || v == MatchAll
}

// Result is a filtered project list.
// Filtered distinguishes an empty match from an unfiltered list.
type Result struct {
	Projects []types.Project `json:"projects"`
	Total    int             `json:"total"`
	Shown    int             `json:"shown"`
	Filtered bool            `json:"filtered"`
}

// Empty reports whether the filter matched nothing.
func (r Result) Empty() bool {
	return r.Shown == 0
}

// FilterProjects keeps the projects whose name or location contains the
// query (case-insensitive) and whose status and region equal the selectors.
// Input order is preserved.
func FilterProjects(projects []types.Project, q ProjectQuery) Result {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	matched := make([]types.Project, 0, len(projects))

	for _, p := range projects {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Location), needle) {
			continue
		}
		if !isMatchAll(q.Status) && string(p.Status) != q.Status {
			continue
		}
		if !isMatchAll(q.Region) && p.Region != q.Region {
			continue
		}
		matched = append(matched, p)
	}

	return Result{
		Projects: matched,
		Total:    len(projects),
		Shown:    len(matched),
		Filtered: !q.IsZero(),
	}
}

// NeedsAttention reports whether a project is delayed or has a validation
// score below AttentionScoreThreshold.
func NeedsAttention(p types.Project) bool {
	return p.Status == types.ProjectDelayed || p.ValidationScore < AttentionScoreThreshold
}

// AttentionNeeded returns the projects that need attention, each once, in input order.
func AttentionNeeded(projects []types.Project) []types.Project {
	out := make([]types.Project, 0)
	for _, p := range projects {
		if NeedsAttention(p) {
			out = append(out, p)
		}
	}
	return out
}

// ActiveReports returns the reports that are pending or under review.
func ActiveReports(reports []types.Report) []types.Report {
	out := make([]types.Report, 0)
	for _, r := range reports {
		if r.Status == types.ReportPending || r.Status == types.ReportUnderReview {
			out = append(out, r)
		}
	}
	return out
}

// Regions returns the distinct project regions in first-seen order.
func Regions(projects []types.Project) []string {
	seen := make(map[string]struct{}, len(projects))
	out := make([]string, 0)
	for _, p := range projects {
		if _, ok := seen[p.Region]; ok {
			continue
		}
		seen[p.Region] = struct{}{}
		out = append(out, p.Region)
	}
	return out
}
