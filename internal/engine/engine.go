// Package engine decides execution mode and timeout, drives the run state
// machine, sequences event-wide invocations, and owns the boundary to the
// external reasoning collaborator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openclaw/agenthook/internal/agentdef"
	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/discovery"
	"github.com/openclaw/agenthook/internal/hookctx"
	"github.com/openclaw/agenthook/internal/invocation"
	"github.com/openclaw/agenthook/internal/journal"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
	"github.com/openclaw/agenthook/internal/validator"
)

// Engine coordinates discovery, validation, context assembly and
// execution for one invocation.
type Engine struct {
	Finder        *discovery.Finder
	Validator     *validator.Validator
	Reporter      *diagnostics.Reporter
	Invoker       Invoker
	Log           *diagnostics.Logger
	WorkspaceRoot string
	// Journal records completed runs when set.
	Journal *journal.Journal

	mu      sync.Mutex
	handles []*TaskHandle
}

// EventResult summarizes an event-wide invocation.
type EventResult struct {
	Executed         []string
	Skipped          []string
	NonFatalFailures []string
}

// ResolveMode applies the mode-selection policy: dry-run wins, then the
// explicit override, then the event's blocking default.
func ResolveMode(inv *invocation.ParsedInvocation) Mode {
	if inv.DryRun {
		return ModeDryRun
	}
	switch inv.ModeOverride {
	case invocation.ModeBlocking:
		return ModeBlocking
	case invocation.ModeNonBlocking:
		return ModeNonBlocking
	}
	if inv.Event != "" && registry.BlockingByDefault(inv.Event) {
		return ModeBlocking
	}
	return ModeNonBlocking
}

// ResolveTimeout applies the timeout-selection policy: explicit override
// wins, otherwise the event-class default.
func ResolveTimeout(inv *invocation.ParsedInvocation) time.Duration {
	if inv.Timeout != 0 {
		return inv.Timeout
	}
	if inv.Event != "" {
		return registry.DefaultTimeoutFor(inv.Event)
	}
	return registry.DefaultTimeout
}

// RunAgent executes a single named agent. Discovery and validation
// failures are fatal here: there is no fallback target.
func (e *Engine) RunAgent(ctx context.Context, inv *invocation.ParsedInvocation) error {
	ctx, span := startRunSpan(ctx, inv.AgentName, string(inv.Event))
	var runErr error
	defer func() { endSpan(span, runErr) }()

	def, err := e.Finder.FindAgent(inv.AgentName)
	if err != nil {
		if errors.Is(err, diagnostics.ErrAgentNotFound) {
			e.printDiscoverable()
		}
		runErr = err
		return err
	}

	if _, err := e.Validator.ValidateFile(def.SourcePath, validator.DepthStrict); err != nil {
		runErr = err
		return err
	}

	err = e.execute(ctx, inv, def)
	if err != nil && ResolveMode(inv) == ModeNonBlocking {
		// Off the critical path: the failure is logged, the invocation
		// still succeeds.
		e.Log.Warn("non-blocking run failed", map[string]interface{}{
			"agent": def.Name, "error": err.Error(),
		})
		return nil
	}
	runErr = err
	return err
}

// RunEvent executes every agent subscribed to the invocation's event in
// ascending priority order. One bad agent is skipped with a warning; a
// blocking agent's failure short-circuits the rest.
func (e *Engine) RunEvent(ctx context.Context, inv *invocation.ParsedInvocation) (*EventResult, error) {
	ctx, span := startEventSpan(ctx, string(inv.Event))
	var runErr error
	defer func() { endSpan(span, runErr) }()

	mapping := e.Finder.LoadMapping(inv.MappingPath, e.WorkspaceRoot)
	subs := e.Finder.GetAgentsForEvent(mapping, inv.Event)
	result := &EventResult{}

	if len(subs) == 0 {
		e.Log.Info("no agents configured for event", map[string]interface{}{
			"event": string(inv.Event),
		})
		return result, nil
	}

	for i, sub := range subs {
		agentInv := *inv
		agentInv.AgentName = sub.Name
		agentInv.EventWide = false

		def, err := e.Finder.FindAgent(sub.Name)
		if err != nil {
			// Resolution already succeeded once during subscription
			// filtering, so this is a race with the filesystem.
			e.Log.Warn("agent disappeared, skipping", map[string]interface{}{
				"agent": sub.Name, "error": err.Error(),
			})
			result.Skipped = append(result.Skipped, sub.Name)
			continue
		}

		mode := ResolveMode(&agentInv)

		if _, err := e.Validator.ValidateFile(def.SourcePath, validator.DepthStrict); err != nil {
			// A security violation or bad metadata aborts this agent
			// only, unless the event needs it in blocking mode.
			if mode == ModeBlocking && errors.Is(err, diagnostics.ErrSecurityViolation) {
				e.skipRemaining(result, subs[i+1:])
				runErr = err
				return result, err
			}
			e.Log.Warn("agent failed validation, skipping", map[string]interface{}{
				"agent": sub.Name, "error": err.Error(),
			})
			result.Skipped = append(result.Skipped, sub.Name)
			continue
		}

		err = e.execute(ctx, &agentInv, def)
		result.Executed = append(result.Executed, sub.Name)
		if err == nil {
			continue
		}
		if mode == ModeBlocking {
			e.skipRemaining(result, subs[i+1:])
			runErr = err
			return result, err
		}
		e.Log.Warn("non-blocking agent failed, continuing", map[string]interface{}{
			"agent": sub.Name, "error": err.Error(),
		})
		result.NonFatalFailures = append(result.NonFatalFailures, sub.Name)
	}

	return result, nil
}

func (e *Engine) skipRemaining(result *EventResult, rest []discovery.Subscription) {
	for _, sub := range rest {
		e.Log.Warn("skipping agent after blocking failure", map[string]interface{}{
			"agent": sub.Name,
		})
		result.Skipped = append(result.Skipped, sub.Name)
	}
}

// execute takes a validated definition through context assembly and the
// run state machine. Context cleanup runs on every exit path.
func (e *Engine) execute(ctx context.Context, inv *invocation.ParsedInvocation, def *agentdef.Definition) error {
	mode := ResolveMode(inv)
	timeout := ResolveTimeout(inv)

	assembler := &hookctx.Assembler{Log: e.Log.WithComponent("hookctx")}
	hctx, err := assembler.Gather(ctx, inv, e.WorkspaceRoot)
	if err != nil {
		return err
	}
	defer func() {
		if err := assembler.Cleanup(); err != nil {
			e.Log.Error("context cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if mode == ModeDryRun {
		return e.reportDryRun(inv, def, hctx, timeout)
	}

	contextPath, err := assembler.Persist(hctx)
	if err != nil {
		return err
	}

	run := &Run{
		Agent:   def,
		Mode:    mode,
		Timeout: timeout,
		Status:  StatusNotStarted,
	}

	e.Log.Info("starting run", map[string]interface{}{
		"agent":   def.Name,
		"event":   string(inv.Event),
		"mode":    string(mode),
		"timeout": timeout.String(),
	})

	started := time.Now()
	if mode == ModeBlocking {
		defer run.cleanup()
		err = e.executeBlocking(ctx, run, contextPath)
	} else {
		err = e.executeNonBlocking(ctx, run, contextPath)
	}
	e.recordRun(run, inv, started, err)
	return err
}

// recordRun appends the run to the journal. A journal failure is logged,
// never propagated.
func (e *Engine) recordRun(run *Run, inv *invocation.ParsedInvocation, started time.Time, runErr error) {
	if e.Journal == nil {
		return
	}
	rec := journal.Record{
		Agent:    run.Agent.Name,
		Event:    string(inv.Event),
		Mode:     string(run.Mode),
		Status:   string(run.Status),
		Started:  started,
		Duration: time.Since(started),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := e.Journal.Append(rec); err != nil {
		e.Log.Warn("run journal append failed", map[string]interface{}{"error": err.Error()})
	}
}

// executeBlocking runs synchronously with an enforced deadline. A blocking
// recommendation in the output fails the invocation and surfaces the
// agent's reasoning to the caller.
func (e *Engine) executeBlocking(ctx context.Context, run *Run, contextPath string) error {
	if err := run.prepare(); err != nil {
		return err
	}
	run.Status = StatusRunning
	run.StartedAt = time.Now()

	res, err := e.Invoker.Invoke(ctx, run.Agent, contextPath, run.Timeout)
	if err != nil {
		run.Status = StatusFailed
		return fmt.Errorf("agent %s: %v: %w", run.Agent.Name, err, diagnostics.ErrExecutionFailed)
	}
	run.recordOutput(res.Output)

	if res.TimedOut {
		run.Status = StatusTimedOut
		return fmt.Errorf("agent %s exceeded its %v deadline: %w",
			run.Agent.Name, run.Timeout, diagnostics.ErrTimeout)
	}

	if found, marker := scanForBlockingMarker(res.Output); found {
		run.Status = StatusFailed
		run.BlockingRecommended = true
		return fmt.Errorf("agent %s recommends blocking (%s):\n%s\n%w",
			run.Agent.Name, marker, strings.TrimSpace(res.Output), diagnostics.ErrExecutionFailed)
	}

	run.Status = StatusCompleted
	e.Log.Info("run completed", map[string]interface{}{"agent": run.Agent.Name})
	return nil
}

// executeNonBlocking dispatches the run as a tracked background task and
// waits for it so event ordering stays deterministic. The run's failure is
// returned for accounting; callers decide that it never fails the
// invocation.
func (e *Engine) executeNonBlocking(ctx context.Context, run *Run, contextPath string) error {
	if err := run.prepare(); err != nil {
		return err
	}
	run.Status = StatusRunning
	run.StartedAt = time.Now()

	handle := startTask(ctx, run, func(taskCtx context.Context) error {
		res, err := e.Invoker.Invoke(taskCtx, run.Agent, contextPath, run.Timeout)
		if err != nil {
			run.Status = StatusFailed
			return err
		}
		run.recordOutput(res.Output)
		if res.TimedOut {
			run.Status = StatusTimedOut
			return fmt.Errorf("exceeded %v deadline: %w", run.Timeout, diagnostics.ErrTimeout)
		}
		if found, marker := scanForBlockingMarker(res.Output); found {
			run.BlockingRecommended = true
			e.Log.Warn("non-blocking agent recommends blocking", map[string]interface{}{
				"agent": run.Agent.Name, "marker": marker,
			})
		}
		run.Status = StatusCompleted
		return nil
	})
	e.track(handle)
	return handle.Wait()
}

func (e *Engine) track(h *TaskHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handles = append(e.handles, h)
}

// Handles returns the tracked non-blocking task handles.
func (e *Engine) Handles() []*TaskHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*TaskHandle, len(e.handles))
	copy(out, e.handles)
	return out
}

// EmergencyCleanup cancels outstanding non-blocking runs and removes every
// temp resource tied to this invocation. Used by the interrupt path.
func (e *Engine) EmergencyCleanup() error {
	for _, h := range e.Handles() {
		h.Cancel()
	}
	for _, h := range e.Handles() {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			e.Log.Warn("task did not stop in time", map[string]interface{}{
				"agent": h.run.Agent.Name,
			})
		}
	}
	return storage.CleanTempRoot()
}

// reportDryRun prints what would run without invoking anything.
func (e *Engine) reportDryRun(inv *invocation.ParsedInvocation, def *agentdef.Definition, hctx *hookctx.Context, timeout time.Duration) error {
	resolved := ModeNonBlocking
	if inv.ModeOverride == invocation.ModeBlocking ||
		(inv.ModeOverride == invocation.ModeDefault && inv.Event != "" && registry.BlockingByDefault(inv.Event)) {
		resolved = ModeBlocking
	}
	e.Log.Info("dry run", map[string]interface{}{
		"agent":   def.Name,
		"event":   string(inv.Event),
		"mode":    string(resolved),
		"timeout": timeout.String(),
		"tier":    string(def.OriginTier),
		"source":  def.SourcePath,
	})
	fmt.Printf("agent:   %s (%s tier)\nevent:   %s\nmode:    %s\ntimeout: %s\ncontext: event=%s tool=%s target=%v\n",
		def.Name, def.OriginTier, inv.Event, resolved, timeout,
		hctx.Event.Type, hctx.Event.TriggeringTool, inv.TargetFile != "")
	return nil
}

func (e *Engine) printDiscoverable() {
	defs, err := e.Finder.ListAll()
	if err != nil || len(defs) == 0 {
		fmt.Println("No agents are currently discoverable.")
		return
	}
	fmt.Println("Discoverable agents:")
	for _, d := range defs {
		fmt.Printf("  %-24s (%s tier)\n", d.Name, d.OriginTier)
	}
}
