package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/aequiflow/internal/filter"
	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/types"
	"github.com/hyperengineering/aequiflow/internal/validation"
)

// ProjectView is a project with its display-derived values.
type ProjectView struct {
	types.Project
	DisbursementPercent int           `json:"disbursement_percent"`
	BudgetDisplay       string        `json:"budget_display"`
	DisbursedDisplay    string        `json:"disbursed_display"`
	StatusColor         string        `json:"status_color"`
	Confidence          filter.Bucket `json:"confidence"`
	NeedsAttention      bool          `json:"needs_attention"`
}

func newProjectView(p types.Project) ProjectView {
	return ProjectView{
		Project:             p,
		DisbursementPercent: store.DisbursementPercent(p.Disbursed, p.Budget),
		BudgetDisplay:       store.FormatCurrency(p.Budget),
		DisbursedDisplay:    store.FormatCurrency(p.Disbursed),
		StatusColor:         store.StatusColor(p.Status),
		Confidence:          filter.BucketFor(p.ValidationScore),
		NeedsAttention:      filter.NeedsAttention(p),
	}
}

func newProjectViews(projects []types.Project) []ProjectView {
	out := make([]ProjectView, len(projects))
	for i, p := range projects {
		out[i] = newProjectView(p)
	}
	return out
}

// ProjectListResponse is the filtered project list.
type ProjectListResponse struct {
	Projects []ProjectView `json:"projects"`
	Total    int           `json:"total"`
	Shown    int           `json:"shown"`
	Filtered bool          `json:"filtered"`
}

// ProjectDetailResponse is one project with its linked reports.
type ProjectDetailResponse struct {
	ProjectView
	Reports []types.Report `json:"reports"`
}

// MapMarker is the payload the map view renders per project.
type MapMarker struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Location string              `json:"location"`
	Lat      float64             `json:"lat"`
	Lng      float64             `json:"lng"`
	Status   types.ProjectStatus `json:"status"`
	Progress int                 `json:"progress"`
	Color    string              `json:"color"`
}

// MapMarkersResponse lists markers for the filtered projects.
type MapMarkersResponse struct {
	Markers  []MapMarker `json:"markers"`
	Total    int         `json:"total"`
	Shown    int         `json:"shown"`
	Filtered bool        `json:"filtered"`
}

// DashboardResponse combines the seeded snapshot with live derivations.
type DashboardResponse struct {
	Stats               types.DashboardStats `json:"stats"`
	TotalBudgetDisplay  string               `json:"total_budget_display"`
	DisbursedDisplay    string               `json:"total_disbursed_display"`
	DisbursementPercent int                  `json:"disbursement_percent"`
	AttentionNeeded     []ProjectView        `json:"attention_needed"`
	ActiveReports       []types.Report       `json:"active_reports"`
	Confidence          filter.BucketCounts  `json:"confidence"`
	Live                filter.Summary       `json:"live"`
}

// projectQuery reads and validates the shared filter parameters.
func projectQuery(w http.ResponseWriter, r *http.Request) (filter.ProjectQuery, bool) {
	q := filter.ProjectQuery{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
		Region: r.URL.Query().Get("region"),
	}
	if errs := validation.ValidateProjectQuery(q); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", errs)
		return q, false
	}
	return q, true
}

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q, ok := projectQuery(w, r)
	if !ok {
		return
	}

	res := filter.FilterProjects(h.data.Projects(), q)
	writeJSON(w, http.StatusOK, ProjectListResponse{
		Projects: newProjectViews(res.Projects),
		Total:    res.Total,
		Shown:    res.Shown,
		Filtered: res.Filtered,
	})
}

// GetProject handles GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.data.ProjectByID(chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProjectDetailResponse{
		ProjectView: newProjectView(p),
		Reports:     nonNilReports(h.data.ReportsByProject(p.ID)),
	})
}

// ProjectReports handles GET /api/v1/projects/{id}/reports
func (h *Handler) ProjectReports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.data.ProjectByID(id); err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]types.Report{
		"reports": nonNilReports(h.data.ReportsByProject(id)),
	})
}

// Regions handles GET /api/v1/regions
func (h *Handler) Regions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"regions": filter.Regions(h.data.Projects()),
	})
}

// MapMarkers handles GET /api/v1/map/markers
func (h *Handler) MapMarkers(w http.ResponseWriter, r *http.Request) {
	q, ok := projectQuery(w, r)
	if !ok {
		return
	}

	res := filter.FilterProjects(h.data.Projects(), q)
	markers := make([]MapMarker, len(res.Projects))
	for i, p := range res.Projects {
		markers[i] = MapMarker{
			ID:       p.ID,
			Name:     p.Name,
			Location: p.Location,
			Lat:      p.Coordinates.Lat,
			Lng:      p.Coordinates.Lng,
			Status:   p.Status,
			Progress: p.Progress,
			Color:    store.StatusColor(p.Status),
		}
	}

	writeJSON(w, http.StatusOK, MapMarkersResponse{
		Markers:  markers,
		Total:    res.Total,
		Shown:    res.Shown,
		Filtered: res.Filtered,
	})
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	projects := h.data.Projects()
	reports := h.data.Reports()
	stats := h.data.Stats()

	writeJSON(w, http.StatusOK, DashboardResponse{
		Stats:               stats,
		TotalBudgetDisplay:  store.FormatCurrency(stats.TotalBudget),
		DisbursedDisplay:    store.FormatCurrency(stats.TotalDisbursed),
		DisbursementPercent: store.DisbursementPercent(stats.TotalDisbursed, stats.TotalBudget),
		AttentionNeeded:     newProjectViews(filter.AttentionNeeded(projects)),
		ActiveReports:       filter.ActiveReports(reports),
		Confidence:          filter.ConfidenceBuckets(projects),
		Live:                filter.Summarize(projects, reports),
	})
}

func nonNilReports(reports []types.Report) []types.Report {
	if reports == nil {
		return []types.Report{}
	}
	return reports
}
