package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/validation"
)

func TestWriteProblem_BodyFormat(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/projects/proj-999", nil)

	WriteProblem(w, r, http.StatusNotFound, "Resource not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %v, want application/problem+json", ct)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to unmarshal Problem JSON: %v", err)
	}
	want := map[string]interface{}{
		"type":     "https://aequiflow.dev/errors/not-found",
		"title":    "Not Found",
		"status":   float64(404),
		"detail":   "Resource not found",
		"instance": "/api/v1/projects/proj-999",
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("%s = %v, want %v", k, decoded[k], v)
		}
	}
}

func TestWriteProblem_TypeURIs(t *testing.T) {
	tests := []struct {
		status int
		suffix string
	}{
		{http.StatusBadRequest, "bad-request"},
		{http.StatusMethodNotAllowed, "method-not-allowed"},
		{http.StatusRequestEntityTooLarge, "payload-too-large"},
		{http.StatusUnprocessableEntity, "validation-error"},
		{http.StatusInternalServerError, "internal-error"},
		{http.StatusServiceUnavailable, "service-unavailable"},
		{http.StatusTeapot, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteProblem(w, httptest.NewRequest(http.MethodGet, "/x", nil), tt.status, "detail")

			var p Problem
			if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Type != problemBaseURI+tt.suffix {
				t.Errorf("type = %q, want %q", p.Type, problemBaseURI+tt.suffix)
			}
			if p.Title == "" {
				t.Error("title is empty")
			}
		})
	}
}

func TestWriteProblemWithErrors_422(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/v1/report/type", nil)

	WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
		{Field: "type", Message: "must be one of: delay, quality"},
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	var p ProblemWithErrors
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "type" {
		t.Errorf("errors = %+v", p.Errors)
	}
}

func TestMapStoreError(t *testing.T) {
	captureLogs(t)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("project %q: %w", "p", store.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("disk on fire at /var/lib/secret"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			MapStoreError(w, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if strings.Contains(w.Body.String(), "secret") {
				t.Error("internal error detail leaked to client")
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	body := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := env.client().do(t, http.MethodPut, "/api/v1/report/description", body)

	assertStatus(t, w, http.StatusRequestEntityTooLarge)
}
