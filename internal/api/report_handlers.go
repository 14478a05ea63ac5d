package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/aequiflow/internal/triage"
	"github.com/hyperengineering/aequiflow/internal/types"
	"github.com/hyperengineering/aequiflow/internal/validation"
	"github.com/hyperengineering/aequiflow/internal/wizard"
)

// WizardResponse carries the wizard state after a request.
// Accepted is false when a gate or terminal state refused the action.
type WizardResponse struct {
	Accepted       bool           `json:"accepted"`
	State          wizard.State   `json:"state"`
	Photo          string         `json:"photo,omitempty"`
	SimilarReports []triage.Match `json:"similar_reports,omitempty"`
}

type selectTypeRequest struct {
	Type string `json:"type"`
}

type locationRequest struct {
	Location string `json:"location"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func currentWizard(r *http.Request) *wizard.Wizard {
	return MustSessionFromContext(r.Context()).Wizard()
}

func respondWizard(w http.ResponseWriter, wz *wizard.Wizard, accepted bool) {
	writeJSON(w, http.StatusOK, WizardResponse{Accepted: accepted, State: wz.Snapshot()})
}

// GetReport handles GET /api/v1/report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	respondWizard(w, currentWizard(r), true)
}

// IssueTypes handles GET /api/v1/report/issue-types
func (h *Handler) IssueTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]wizard.IssueType{
		"issue_types": wizard.IssueTypes,
	})
}

// SelectType handles PUT /api/v1/report/type
func (h *Handler) SelectType(w http.ResponseWriter, r *http.Request) {
	var req selectTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateReportType(req.Type); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	wz := currentWizard(r)
	respondWizard(w, wz, wz.SelectType(types.ReportType(req.Type)))
}

// AttachPhoto handles POST /api/v1/report/photos
func (h *Handler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	wz := currentWizard(r)
	ref := wz.AttachPhoto()
	writeJSON(w, http.StatusOK, WizardResponse{
		Accepted: ref != "",
		State:    wz.Snapshot(),
		Photo:    ref,
	})
}

// RemovePhoto handles DELETE /api/v1/report/photos/{ref}
func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	ref, err := url.PathUnescape(chi.URLParam(r, "ref"))
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid photo reference")
		return
	}

	wz := currentWizard(r)
	respondWizard(w, wz, wz.RemovePhoto(ref))
}

// SetLocation handles PUT /api/v1/report/location
func (h *Handler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateLocation(req.Location); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	wz := currentWizard(r)
	respondWizard(w, wz, wz.SetLocation(req.Location))
}

// SetDescription handles PUT /api/v1/report/description
func (h *Handler) SetDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateDescription(req.Description); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	wz := currentWizard(r)
	respondWizard(w, wz, wz.SetDescription(req.Description))
}

// NextStep handles POST /api/v1/report/next
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	wz := currentWizard(r)
	respondWizard(w, wz, wz.Next())
}

// PreviousStep handles POST /api/v1/report/back
func (h *Handler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	wz := currentWizard(r)
	respondWizard(w, wz, wz.Back())
}

// SubmitReport handles POST /api/v1/report/submit
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	wz := currentWizard(r)
	sub, ok := wz.Submit()
	resp := WizardResponse{Accepted: ok, State: wz.Snapshot()}

	if ok {
		slog.Info("report submitted",
			"component", "wizard",
			"reference_code", sub.ReferenceCode,
			"type", sub.Report.Type,
			"has_photo", sub.Report.HasPhoto,
		)

		// Hints are best effort; the submission stands either way.
		matches, err := h.matcher.Similar(r.Context(), sub.Report.Description)
		if err != nil {
			slog.Warn("similar report lookup failed",
				"component", "triage",
				"reference_code", sub.ReferenceCode,
				"error", err,
			)
		}
		resp.SimilarReports = matches
	}

	writeJSON(w, http.StatusOK, resp)
}

// ResetReport handles POST /api/v1/report/reset
func (h *Handler) ResetReport(w http.ResponseWriter, r *http.Request) {
	wz := MustSessionFromContext(r.Context()).ResetWizard()
	respondWizard(w, wz, true)
}
