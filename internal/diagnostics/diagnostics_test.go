package diagnostics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openclaw/agenthook/internal/registry"
)

func testLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hooks.log")
	l, err := New(path)
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	l.SetStderr(&bytes.Buffer{})
	return l, path
}

func TestLogger_Levels(t *testing.T) {
	l, path := testLogger(t)
	l.SetLevel(LevelDebug)

	l.Debug("debug msg")
	l.Info("info msg", map[string]interface{}{"key": "value"})
	l.Warn("warn msg")
	l.Error("error msg")
	l.Critical("critical msg")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"DEBUG", "INFO", "WARN", "ERROR", "CRIT", "key=value"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogger_MinLevelFilters(t *testing.T) {
	l, path := testLogger(t)
	l.SetLevel(LevelWarn)

	l.Info("quiet")
	l.Warn("loud")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "quiet") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(string(data), "loud") {
		t.Error("warn message missing")
	}
}

func TestLogger_StderrMirror(t *testing.T) {
	l, _ := testLogger(t)
	var stderr bytes.Buffer
	l.SetStderr(&stderr)

	l.Info("info only in file")
	l.Error("error mirrored")

	if strings.Contains(stderr.String(), "info only in file") {
		t.Error("info should not reach stderr")
	}
	if !strings.Contains(stderr.String(), "error mirrored") {
		t.Error("error should reach stderr")
	}
}

func TestViolationLog_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "violations.log")
	vl, err := OpenViolationLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer vl.Close()

	if err := vl.Record("dangerous_command", "recursive delete", "/tmp/agent.md"); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one violation line, got %d", len(lines))
	}
	parts := strings.Split(lines[0], "|")
	if len(parts) != 4 {
		t.Fatalf("line has %d fields, want 4: %q", len(parts), lines[0])
	}
	if _, err := time.Parse(time.RFC3339, parts[0]); err != nil {
		t.Errorf("first field not RFC3339: %v", err)
	}
	if parts[1] != "dangerous_command" || parts[3] != "/tmp/agent.md" {
		t.Errorf("unexpected fields: %v", parts)
	}
}

func TestWebhookNotifier(t *testing.T) {
	var got Violation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := decodeJSON(r, &got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := NewNotifier(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	v := Violation{Kind: "embedded_credential", Detail: "api key assignment", Path: "x.md"}
	if err := n.Notify(v); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.Kind != "embedded_credential" {
		t.Errorf("payload kind = %q", got.Kind)
	}
}

func TestNewNotifier_Targets(t *testing.T) {
	if n, err := NewNotifier(""); err != nil || n != nil {
		t.Errorf("empty target should disable notifications, got %v, %v", n, err)
	}
	if _, err := NewNotifier("ftp://example.com"); err == nil {
		t.Error("unsupported scheme should error")
	}
}

// A failed NATS connect must yield a nil interface, not a typed nil
// that slips past the reporter's nil check and panics on first use.
func TestNewNotifier_FailedNATSConnect(t *testing.T) {
	n, err := NewNotifier("nats://127.0.0.1:1")
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if n != nil {
		t.Fatalf("notifier = %T, want nil on failed connect", n)
	}

	// Wiring keeps running after the warning; violation handling must
	// survive the dead sink.
	l, _ := testLogger(t)
	r := &Reporter{Log: l, Notify: n}
	r.HandleSecurityViolation("dangerous_command", "rm -rf /", "a.md")
}

// Notification failure never blocks the triggering failure path.
func TestReporter_NotifyFailureNonFatal(t *testing.T) {
	l, _ := testLogger(t)
	vpath := filepath.Join(t.TempDir(), "violations.log")
	vl, err := OpenViolationLog(vpath)
	if err != nil {
		t.Fatal(err)
	}
	defer vl.Close()

	r := &Reporter{Log: l, Violations: vl, Notify: failingNotifier{}}
	r.HandleSecurityViolation("dangerous_command", "pipe to shell", "a.md")

	data, _ := os.ReadFile(vpath)
	if !strings.Contains(string(data), "dangerous_command") {
		t.Error("violation should be recorded despite notifier failure")
	}
}

type failingNotifier struct{}

func (failingNotifier) Notify(Violation) error { return errors.New("sink unreachable") }

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, registry.ExitOK},
		{ErrGeneral, registry.ExitGeneralError},
		{ErrValidationFailed, registry.ExitValidationFailed},
		{ErrAgentNotFound, registry.ExitAgentNotFound},
		{ErrExecutionFailed, registry.ExitExecutionFailed},
		{ErrTimeout, registry.ExitTimeout},
		{ErrSecurityViolation, registry.ExitSecurityViolation},
		{errors.New("anything else"), registry.ExitGeneralError},
		{fmt.Errorf("wrapped: %w", ErrTimeout), registry.ExitTimeout},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRecover_UnknownClass(t *testing.T) {
	l, _ := testLogger(t)
	r := &Reporter{Log: l}
	err := r.Recover(FailureKind("alien_failure"))
	if !errors.Is(err, ErrNoRecoveryAvailable) {
		t.Errorf("expected ErrNoRecoveryAvailable, got %v", err)
	}
}

func TestRecover_StaleTempFiles(t *testing.T) {
	l, _ := testLogger(t)
	r := &Reporter{Log: l}
	if err := r.Recover(FailureStaleTempFiles); err != nil {
		t.Errorf("stale temp recovery: %v", err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
