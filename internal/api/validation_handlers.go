package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/aequiflow/internal/voting"
)

// ValidationListResponse is the session's view of the validation queue.
type ValidationListResponse struct {
	Items   []voting.ItemView `json:"items"`
	Summary voting.Summary    `json:"summary"`
}

// VoteResponse reports the outcome of a confirm or flag request.
type VoteResponse struct {
	Item    voting.ItemView `json:"item"`
	Outcome voting.Outcome  `json:"outcome"`
}

// ListValidations handles GET /api/v1/validations
func (h *Handler) ListValidations(w http.ResponseWriter, r *http.Request) {
	ballot := MustSessionFromContext(r.Context()).Ballot()
	writeJSON(w, http.StatusOK, ValidationListResponse{
		Items:   ballot.Items(),
		Summary: ballot.Summary(),
	})
}

// ConfirmValidation handles POST /api/v1/validations/{id}/confirm
func (h *Handler) ConfirmValidation(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, (*voting.Ballot).Confirm)
}

// FlagValidation handles POST /api/v1/validations/{id}/flag
func (h *Handler) FlagValidation(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, (*voting.Ballot).Flag)
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, cast func(*voting.Ballot, string) (voting.ItemView, voting.Outcome, error)) {
	ballot := MustSessionFromContext(r.Context()).Ballot()

	item, outcome, err := cast(ballot, chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, VoteResponse{Item: item, Outcome: outcome})
}
