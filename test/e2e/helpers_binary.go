//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/exec"
	"testing"
	"time"
)

// aequiflowServer manages a running AequiFlow server process.
type aequiflowServer struct {
	cmd     *exec.Cmd
	dataDir string
	address string
	logFile string
	done    chan error
}

// startAequiflow launches the binary and waits for it to become healthy.
// The server is configured entirely via environment variables.
func startAequiflow(t *testing.T, extraEnv ...string) *aequiflowServer {
	t.Helper()

	if aequiflowBin == "" {
		t.Skip("aequiflow binary not available (set AEQUIFLOW_BIN or add to PATH)")
	}

	dataDir := t.TempDir()
	port := freePort(t)
	address := fmt.Sprintf("127.0.0.1:%d", port)
	logFile := fmt.Sprintf("%s/aequiflow.log", dataDir)

	cmd := exec.Command(aequiflowBin)
	cmd.Env = append(os.Environ(),
		"AEQUIFLOW_PORT="+fmt.Sprintf("%d", port),
		"AEQUIFLOW_DATASET_PATH="+fmt.Sprintf("%s/aequiflow.db", dataDir),
		"AEQUIFLOW_CONFIG_PATH="+fmt.Sprintf("%s/nonexistent.yaml", dataDir), // skip YAML file
		"AEQUIFLOW_SESSION_SECRET=e2e-session-secret-0123456789abcdef",
		"AEQUIFLOW_LOCATION_DELAY=50ms",
		"OPENAI_API_KEY=", // no similar-report hints
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	cmd.Stdout = lf
	cmd.Stderr = lf

	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start aequiflow: %v", err)
	}

	s := &aequiflowServer{
		cmd:     cmd,
		dataDir: dataDir,
		address: address,
		logFile: logFile,
		done:    make(chan error, 1),
	}
	go func() { s.done <- cmd.Wait() }()

	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		t.Fatalf("aequiflow not healthy: %v", err)
	}

	return s
}

// stop interrupts the server and returns its exit error.
func (s *aequiflowServer) stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	_ = s.cmd.Process.Signal(os.Interrupt)
	select {
	case err := <-s.done:
		s.cmd = nil
		return err
	case <-time.After(10 * time.Second):
		_ = s.cmd.Process.Kill()
		return fmt.Errorf("server did not exit after interrupt")
	}
}

func (s *aequiflowServer) baseURL() string {
	return fmt.Sprintf("http://%s", s.address)
}

func (s *aequiflowServer) logs(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(s.logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func (s *aequiflowServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("%s/api/v1/health", s.baseURL())

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("aequiflow not healthy after %s", timeout)
}

// visitor is an HTTP client with its own cookie jar, like one browser.
type visitor struct {
	server *aequiflowServer
	client *http.Client
}

func newVisitor(t *testing.T, s *aequiflowServer) *visitor {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &visitor{server: s, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (v *visitor) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, v.server.baseURL()+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
