package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperengineering/aequiflow/internal/embedding"
	"github.com/hyperengineering/aequiflow/internal/session"
	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/triage"
	"github.com/hyperengineering/aequiflow/internal/wizard"
)

const (
	testCookieName = "aequiflow_session"
	testSecret     = "0123456789abcdef0123456789abcdef"
	testVersion    = "1.2.3"
)

// manualTimer never fires on its own; tests call fire() to complete detection.
type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return true
}

func (t *manualTimer) fire() { t.f() }

type testEnv struct {
	router   http.Handler
	data     store.Store
	sessions *session.Manager
	timers   []*manualTimer
}

// newTestEnv wires a router over the seeded demo dataset.
// A nil embedder disables similar-report hints.
func newTestEnv(t *testing.T, e embedding.Embedder) *testEnv {
	t.Helper()

	data, err := store.LoadSQLite(context.Background(), store.MemoryPath)
	if err != nil {
		t.Fatalf("LoadSQLite() error = %v", err)
	}

	env := &testEnv{data: data}
	env.sessions = session.NewManager(data.ValidationItems(), session.Options{
		IdleTTL: time.Hour,
		Wizard: wizard.Options{
			DetectionDelay:   time.Second,
			DetectedLocation: "Novaliches, Quezon City (Auto-detected)",
			Schedule: func(d time.Duration, f func()) wizard.Timer {
				tm := &manualTimer{f: f}
				env.timers = append(env.timers, tm)
				return tm
			},
		},
	})
	t.Cleanup(env.sessions.Close)

	var matcher *triage.Matcher
	if e != nil {
		matcher = triage.NewMatcher(e, data.Reports(), 0.8, 3)
	}

	h := NewHandler(HandlerOptions{
		Store:    data,
		Sessions: env.sessions,
		Matcher:  matcher,
		Cookies: NewCookieStore(CookieOptions{
			Name:   testCookieName,
			Secret: []byte(testSecret),
			MaxAge: time.Hour,
		}),
		CookieName: testCookieName,
		Version:    testVersion,
	})
	env.router = NewRouter(h)
	return env
}

// client replays the session cookie across requests like a browser.
type client struct {
	env     *testEnv
	cookies []*http.Cookie
}

func (env *testEnv) client() *client {
	return &client{env: env}
}

func (c *client) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response: %v\nbody: %s", err, w.Body.String())
	}
	return v
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, want, w.Body.String())
	}
}
