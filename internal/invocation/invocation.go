// Package invocation normalizes a triggering request into an immutable
// ParsedInvocation value that is passed by parameter through the rest of
// the run. There is no shared parsing state.
package invocation

import (
	"fmt"
	"time"

	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/registry"
)

// Mode is an explicit execution-mode override.
type Mode string

const (
	ModeDefault     Mode = ""
	ModeBlocking    Mode = "blocking"
	ModeNonBlocking Mode = "non-blocking"
)

// ParsedInvocation is the validated, normalized form of a run request.
type ParsedInvocation struct {
	// AgentName is set for single-agent runs; empty in event-wide mode.
	AgentName string
	// Event is the triggering event. Required in event-wide mode,
	// optional for single-agent runs.
	Event registry.EventType
	// EventWide selects "run every agent subscribed to Event".
	EventWide bool
	// ExtraContext is a free-text note threaded into the context.
	ExtraContext string

	// Flags.
	Debug        bool
	DryRun       bool
	Timeout      time.Duration // 0 means use the event-class default
	ModeOverride Mode
	IncludeHost  bool
	// MappingPath overrides the event-mapping resource location.
	MappingPath string
	// TriggeringTool names the tool whose action fired the event.
	TriggeringTool string
	// TargetFile is the file the triggering action touches, if any.
	TargetFile string
}

// ParseSingle builds an invocation for one named agent.
func ParseSingle(agentName, eventType, extraContext string) (*ParsedInvocation, error) {
	if !registry.ValidAgentName(agentName) {
		return nil, fmt.Errorf("agent name %q must match %s and be at most %d characters: %w",
			agentName, registry.AgentNamePattern, registry.MaxAgentNameLen, diagnostics.ErrValidationFailed)
	}
	inv := &ParsedInvocation{AgentName: agentName, ExtraContext: extraContext}
	if eventType != "" {
		if !registry.IsEvent(eventType) {
			return nil, unknownEventErr(eventType)
		}
		inv.Event = registry.EventType(eventType)
	}
	return inv, nil
}

// ParseEventWide builds an invocation that runs every agent subscribed to
// the event.
func ParseEventWide(eventType string) (*ParsedInvocation, error) {
	if !registry.IsEvent(eventType) {
		return nil, unknownEventErr(eventType)
	}
	return &ParsedInvocation{
		Event:     registry.EventType(eventType),
		EventWide: true,
	}, nil
}

// ApplyFlags validates and attaches the flag set. Mutually exclusive mode
// overrides and out-of-bounds timeouts fail here, before any filesystem
// work happens.
func (inv *ParsedInvocation) ApplyFlags(timeout time.Duration, blocking, nonBlocking, dryRun, debug bool) error {
	if blocking && nonBlocking {
		return fmt.Errorf("--blocking and --non-blocking are mutually exclusive: %w",
			diagnostics.ErrValidationFailed)
	}
	if timeout != 0 {
		if timeout < registry.MinTimeout {
			return fmt.Errorf("timeout %v below minimum %v: %w",
				timeout, registry.MinTimeout, diagnostics.ErrValidationFailed)
		}
		if timeout > registry.MaxTimeout {
			return fmt.Errorf("timeout %v exceeds maximum %v: %w",
				timeout, registry.MaxTimeout, diagnostics.ErrValidationFailed)
		}
		inv.Timeout = timeout
	}
	switch {
	case blocking:
		inv.ModeOverride = ModeBlocking
	case nonBlocking:
		inv.ModeOverride = ModeNonBlocking
	}
	inv.DryRun = dryRun
	inv.Debug = debug
	return nil
}

func unknownEventErr(eventType string) error {
	return fmt.Errorf("unknown event type %q (supported: %v): %w",
		eventType, registry.Events, diagnostics.ErrValidationFailed)
}
