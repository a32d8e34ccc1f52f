package engine

import (
	"fmt"
	"regexp"
	"time"

	"github.com/openclaw/agenthook/internal/agentdef"
	"github.com/openclaw/agenthook/internal/storage"
)

// Mode is the resolved execution mode of a run.
type Mode string

const (
	ModeBlocking    Mode = "blocking"
	ModeNonBlocking Mode = "non-blocking"
	ModeDryRun      Mode = "dry-run"
)

// Status tracks the run lifecycle. Transitions only move forward:
// not-started -> preparing -> running -> {completed, timed-out, failed}.
// cleaned-up marks a run released before it reached an outcome; releasing
// resources after a terminal outcome leaves that outcome visible.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusPreparing  Status = "preparing"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusTimedOut   Status = "timed-out"
	StatusFailed     Status = "failed"
	StatusCleanedUp  Status = "cleaned-up"
)

// Run is one agent execution. Owned exclusively by the engine; never
// shared across concurrent runs.
type Run struct {
	Agent     *agentdef.Definition
	Mode      Mode
	Timeout   time.Duration
	StartedAt time.Time
	Status    Status

	// Output is the collaborator's raw output text.
	Output string
	// BlockingRecommended is set when the output carries a blocking
	// recommendation marker.
	BlockingRecommended bool

	// outputRes is the per-run output channel on disk.
	outputRes *storage.TempResource
}

// prepare allocates the per-run output channel and advances the state.
func (r *Run) prepare() error {
	r.Status = StatusPreparing
	res, err := storage.CreateTempResource("output-"+r.Agent.Name, ".out")
	if err != nil {
		r.Status = StatusFailed
		return fmt.Errorf("prepare output channel: %w", err)
	}
	r.outputRes = res
	return nil
}

// recordOutput writes the collaborator output to the run's channel.
func (r *Run) recordOutput(output string) {
	r.Output = output
	if r.outputRes != nil {
		// Best effort: the in-memory copy is authoritative.
		_ = r.outputRes.Write([]byte(output))
	}
}

// cleanup releases the run's resources. Always reached, even on early
// abort, and safe to call more than once. A terminal outcome survives
// cleanup so late readers still see how the run ended.
func (r *Run) cleanup() {
	if r.outputRes != nil {
		_ = r.outputRes.Remove()
	}
	switch r.Status {
	case StatusCompleted, StatusTimedOut, StatusFailed:
	default:
		r.Status = StatusCleanedUp
	}
}

// blockingMarkers is the closed set of output tokens treated as a
// blocking recommendation. The collaborator emits free text, so this is a
// literal keyword scan over that text.
var blockingMarkers = regexp.MustCompile(`\b(SECURITY VIOLATION|POLICY VIOLATION|BLOCK|ABORT)\b`)

// scanForBlockingMarker reports whether output recommends blocking and
// which marker matched.
func scanForBlockingMarker(output string) (bool, string) {
	m := blockingMarkers.FindString(output)
	return m != "", m
}
