package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, "No such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Read-only dataset routes need no session
		r.Get("/health", h.Health)
		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{id}", h.GetProject)
		r.Get("/projects/{id}/reports", h.ProjectReports)
		r.Get("/regions", h.Regions)
		r.Get("/map/markers", h.MapMarkers)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/report/issue-types", h.IssueTypes)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(h.cookies, h.cookieName, h.sessions))

			r.Get("/validations", h.ListValidations)
			r.Post("/validations/{id}/confirm", h.ConfirmValidation)
			r.Post("/validations/{id}/flag", h.FlagValidation)

			r.Get("/report", h.GetReport)
			r.Put("/report/type", h.SelectType)
			r.Post("/report/photos", h.AttachPhoto)
			r.Delete("/report/photos/{ref}", h.RemovePhoto)
			r.Put("/report/location", h.SetLocation)
			r.Put("/report/description", h.SetDescription)
			r.Post("/report/next", h.NextStep)
			r.Post("/report/back", h.PreviousStep)
			r.Post("/report/submit", h.SubmitReport)
			r.Post("/report/reset", h.ResetReport)
		})
	})

	return r
}
