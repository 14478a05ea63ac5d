package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/hyperengineering/aequiflow/internal/session"
	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/triage"
	"github.com/hyperengineering/aequiflow/internal/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// HandlerOptions wires a Handler to its collaborators.
type HandlerOptions struct {
	Store      store.Store
	Sessions   *session.Manager
	Matcher    *triage.Matcher
	Cookies    sessions.Store
	CookieName string
	Version    string
}

// Handler implements the API handlers
type Handler struct {
	data       store.Store
	sessions   *session.Manager
	matcher    *triage.Matcher
	cookies    sessions.Store
	cookieName string
	version    string
}

// NewHandler creates a Handler. A nil Matcher disables similar-report hints.
func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		data:       opts.Store,
		sessions:   opts.Sessions,
		matcher:    opts.Matcher,
		cookies:    opts.Cookies,
		cookieName: opts.CookieName,
		version:    opts.Version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		ProjectCount:    len(h.data.Projects()),
		ReportCount:     len(h.data.Reports()),
		ActiveSessions:  h.sessions.Len(),
		SimilarityHints: h.matcher.Enabled(),
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON body into v, writing a 400 problem on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	return true
}
