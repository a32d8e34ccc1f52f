package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Reporter bundles the logger, violation log and notifier so failure
// handling has a single entry point.
type Reporter struct {
	Log        *Logger
	Violations *ViolationLog
	Notify     Notifier
}

// HandleSecurityViolation logs the finding critically, records it in the
// violation log, and dispatches a best-effort notification. It never
// returns an error for notification failures.
func (r *Reporter) HandleSecurityViolation(kind, detail, path string) {
	r.Log.Critical("security violation", map[string]interface{}{
		"kind":   kind,
		"detail": detail,
		"path":   path,
	})
	if r.Violations != nil {
		if err := r.Violations.Record(kind, detail, path); err != nil {
			r.Log.Error("violation log append failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if r.Notify != nil {
		host, _ := os.Hostname()
		v := Violation{
			Timestamp: time.Now().UTC(),
			Kind:      kind,
			Detail:    detail,
			Path:      path,
			Host:      host,
		}
		if err := r.Notify.Notify(v); err != nil {
			r.Log.Warn("violation notification failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// FailureKind identifies a known, recoverable failure class.
type FailureKind string

const (
	FailureMissingDirectories FailureKind = "missing_directories"
	FailureUnreadableConfig   FailureKind = "unreadable_config"
	FailureStaleTempFiles     FailureKind = "stale_temp_files"
)

// ErrNoRecoveryAvailable marks failure classes with no defined recovery.
var ErrNoRecoveryAvailable = errors.New("no recovery available")

// Recover executes the defined recovery action for a known failure class.
// Anything outside the closed set gets ErrNoRecoveryAvailable.
func (r *Reporter) Recover(kind FailureKind) error {
	switch kind {
	case FailureMissingDirectories:
		stateDir, err := registry.StateDir()
		if err != nil {
			return err
		}
		if err := storage.EnsureDir(stateDir, registry.DirPerm); err != nil {
			return err
		}
		r.Log.Info("recovered missing state directory", map[string]interface{}{"dir": stateDir})
		return nil
	case FailureUnreadableConfig:
		// A broken mapping resource degrades to "no agents configured";
		// nothing to repair on disk, just note the degradation.
		r.Log.Warn("configuration unreadable, continuing with no agents configured")
		return nil
	case FailureStaleTempFiles:
		if err := storage.CleanTempRoot(); err != nil {
			return err
		}
		r.Log.Info("removed stale temp resources")
		return nil
	default:
		return fmt.Errorf("%s: %w", kind, ErrNoRecoveryAvailable)
	}
}

// SafeExit attempts cleanup, logs the outcome, and terminates the process
// with code. cleanup may be nil.
func (r *Reporter) SafeExit(code int, cleanup func() error) {
	if cleanup != nil {
		if err := cleanup(); err != nil {
			r.Log.Error("cleanup before exit failed", map[string]interface{}{"error": err.Error()})
		} else {
			r.Log.Debug("cleanup before exit complete")
		}
	}
	r.Log.Debug("exiting", map[string]interface{}{"code": code})
	os.Exit(code)
}
