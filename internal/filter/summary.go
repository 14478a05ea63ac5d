package filter

import (
	"math"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// Summary is a dashboard-shaped aggregate computed from the live collections.
// It is reported next to the seeded DashboardStats and never replaces it.
type Summary struct {
	TotalProjects     int     `json:"total_projects"`
	OngoingProjects   int     `json:"ongoing_projects"`
	CompletedProjects int     `json:"completed_projects"`
	DelayedProjects   int     `json:"delayed_projects"`
	TotalBudget       float64 `json:"total_budget"`
	TotalDisbursed    float64 `json:"total_disbursed"`
	TotalReports      int     `json:"total_reports"`
	PendingReports    int     `json:"pending_reports"`
	AverageValidation int     `json:"average_validation"`
}

// Summarize aggregates projects and reports into a Summary.
// AverageValidation is the rounded mean score, 0 when there are no projects.
func Summarize(projects []types.Project, reports []types.Report) Summary {
	s := Summary{
		TotalProjects: len(projects),
		TotalReports:  len(reports),
	}

	var scoreSum int
	for _, p := range projects {
		switch p.Status {
		case types.ProjectOngoing:
			s.OngoingProjects++
		case types.ProjectCompleted:
			s.CompletedProjects++
		case types.ProjectDelayed:
			s.DelayedProjects++
		}
		s.TotalBudget += p.Budget
		s.TotalDisbursed += p.Disbursed
		scoreSum += p.ValidationScore
	}
	if len(projects) > 0 {
		s.AverageValidation = int(math.Round(float64(scoreSum) / float64(len(projects))))
	}

	for _, r := range reports {
		if r.Status == types.ReportPending {
			s.PendingReports++
		}
	}

	return s
}
