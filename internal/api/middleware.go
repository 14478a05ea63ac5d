package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/hyperengineering/aequiflow/internal/session"
)

// GetRequestID returns the chi request ID, or "" outside the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// logLevelForStatus maps a response status to a log level:
// 5xx is an error, 4xx a warning, anything else info.
func logLevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LoggingMiddleware logs one line per completed request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Log(r.Context(), logLevelForStatus(wrapped.statusCode), "request completed",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecoveryMiddleware catches panics and returns 500 Problem Details.
// Panic details are logged but never exposed to the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("panic recovered",
					"error", recovered,
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				)
				WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// sessionIDKey is the cookie session value holding the visitor session ID.
const sessionIDKey = "sid"

// CookieOptions configures the signed session cookie.
type CookieOptions struct {
	Name   string
	Secret []byte
	MaxAge time.Duration
	Secure bool
}

// NewCookieStore returns a signed cookie store for the session ID.
func NewCookieStore(opts CookieOptions) *sessions.CookieStore {
	cs := sessions.NewCookieStore(opts.Secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

// SessionMiddleware resolves the visitor session from the signed cookie,
// creating a session and setting the cookie when none is valid.
func SessionMiddleware(cookies sessions.Store, cookieName string, mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// A tampered or expired cookie decodes to a fresh session.
			cs, err := cookies.Get(r, cookieName)
			if cs == nil {
				slog.Error("session store unavailable",
					"component", "session",
					"error", err,
				)
				WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if err != nil {
				slog.Debug("discarding unreadable session cookie",
					"component", "session",
					"error", err,
				)
			}

			id, _ := cs.Values[sessionIDKey].(string)
			sess, created := mgr.GetOrCreate(id)
			if created {
				cs.Values[sessionIDKey] = sess.ID
				if err := cs.Save(r, w); err != nil {
					slog.Error("failed to save session cookie",
						"component", "session",
						"error", err,
					)
					WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
