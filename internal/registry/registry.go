// Package registry holds the fixed configuration constants for the hook
// runner: event taxonomy, timeout policy, permission policy and the exit
// code contract. Values are validated once at process start.
package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// EventType identifies a lifecycle event that agents can subscribe to.
type EventType string

const (
	EventPreWrite      EventType = "pre_write"
	EventPostWrite     EventType = "post_write"
	EventPreCommit     EventType = "pre_commit"
	EventPostCommit    EventType = "post_commit"
	EventPrePush       EventType = "pre_push"
	EventSecurityCheck EventType = "security_check"
	EventSessionStart  EventType = "session_start"
	EventSessionEnd    EventType = "session_end"
)

// Events lists every supported event type.
var Events = []EventType{
	EventPreWrite,
	EventPostWrite,
	EventPreCommit,
	EventPostCommit,
	EventPrePush,
	EventSecurityCheck,
	EventSessionStart,
	EventSessionEnd,
}

// blockingDefaults are the events that run in blocking mode unless the
// invocation overrides it. These are the events that gate a mutation.
var blockingDefaults = map[EventType]bool{
	EventPreWrite:      true,
	EventPreCommit:     true,
	EventPrePush:       true,
	EventSecurityCheck: true,
}

// securityClass are the events that get the longer timeout default.
var securityClass = map[EventType]bool{
	EventPreWrite:      true,
	EventSecurityCheck: true,
}

// IsEvent reports whether s names a supported event type.
func IsEvent(s string) bool {
	for _, e := range Events {
		if string(e) == s {
			return true
		}
	}
	return false
}

// BlockingByDefault reports whether the event runs in blocking mode when no
// override is given.
func BlockingByDefault(e EventType) bool {
	return blockingDefaults[e]
}

// Timeout policy.
const (
	MinTimeout             = 100 * time.Millisecond
	DefaultTimeout         = 10 * time.Second
	SecurityDefaultTimeout = 20 * time.Second
	MaxTimeout             = 30 * time.Second
)

// DefaultTimeoutFor returns the timeout default for an event class.
// Security-sensitive events get the longer default.
func DefaultTimeoutFor(e EventType) time.Duration {
	if securityClass[e] {
		return SecurityDefaultTimeout
	}
	return DefaultTimeout
}

// Exit code taxonomy. Callers (CI hooks, installers) branch on these.
const (
	ExitOK                int = 0
	ExitGeneralError      int = 1
	ExitValidationFailed  int = 2
	ExitAgentNotFound     int = 3
	ExitExecutionFailed   int = 4
	ExitTimeout           int = 5
	ExitSecurityViolation int = 6
	ExitInterrupted       int = 130
)

// Permission policy: state is private to the invoking user.
const (
	DirPerm  fs.FileMode = 0o700
	FilePerm fs.FileMode = 0o600
)

// Agent definition constraints.
const (
	AgentFileExt       = ".md"
	MaxAgentFileSize   = 256 * 1024
	MaxAgentNameLen    = 64
	MinDescriptionLen  = 10
	MaxDescriptionLen  = 500
	MinBodyLen         = 20
	FrontmatterMarker  = "---"
	ContextSchema      = "1.0"
	MappingResource    = "hooks.yaml"
)

// AgentNamePattern constrains agent names: lowercase start, then lowercase
// letters, digits or hyphens.
var AgentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidAgentName reports whether name satisfies the naming pattern and
// length bound.
func ValidAgentName(name string) bool {
	return len(name) > 0 && len(name) <= MaxAgentNameLen && AgentNamePattern.MatchString(name)
}

// Directory layout. The workspace tier lives under the working directory,
// the user tier under the home directory.
const (
	configDirName = ".claude"
	agentsDirName = "agents"
	stateDirName  = "hooks-state"
)

// WorkspaceAgentsDir returns the workspace-tier agent directory under root.
func WorkspaceAgentsDir(root string) string {
	return filepath.Join(root, configDirName, agentsDirName)
}

// UserAgentsDir returns the user-tier agent directory.
func UserAgentsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName, agentsDirName), nil
}

// WorkspaceMappingPath returns the workspace-tier event mapping resource path.
func WorkspaceMappingPath(root string) string {
	return filepath.Join(root, configDirName, MappingResource)
}

// UserMappingPath returns the user-tier event mapping resource path.
func UserMappingPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName, MappingResource), nil
}

// StateDir returns the directory holding logs and transient run state.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName, stateDirName), nil
}

// Validate checks internal consistency of the constant set. A violation here
// is a programming error and aborts the process at startup; it is the one
// configuration failure that is fatal rather than recoverable.
func Validate() error {
	if MinTimeout <= 0 {
		return fmt.Errorf("registry: minimum timeout must be positive, got %v", MinTimeout)
	}
	if DefaultTimeout > MaxTimeout {
		return fmt.Errorf("registry: default timeout %v exceeds maximum %v", DefaultTimeout, MaxTimeout)
	}
	if SecurityDefaultTimeout > MaxTimeout {
		return fmt.Errorf("registry: security timeout %v exceeds maximum %v", SecurityDefaultTimeout, MaxTimeout)
	}
	if MinTimeout >= DefaultTimeout {
		return fmt.Errorf("registry: minimum timeout %v not below default %v", MinTimeout, DefaultTimeout)
	}
	for e := range blockingDefaults {
		if !IsEvent(string(e)) {
			return fmt.Errorf("registry: blocking default references unknown event %q", e)
		}
	}
	for e := range securityClass {
		if !IsEvent(string(e)) {
			return fmt.Errorf("registry: security class references unknown event %q", e)
		}
	}
	if MinDescriptionLen >= MaxDescriptionLen {
		return fmt.Errorf("registry: description length bounds inverted")
	}
	return nil
}
