// Package main defines the CLI structure using kong.
package main

import "time"

// CLI defines the command-line interface.
type CLI struct {
	Debug     bool   `help:"Enable debug logging"`
	Config    string `help:"Config file path (hooks.toml)"`
	Workspace string `help:"Workspace root" default:"."`

	Run      RunCmd      `cmd:"" help:"Run a single agent"`
	Event    EventCmd    `cmd:"" help:"Run every agent subscribed to an event"`
	List     ListCmd     `cmd:"" help:"List discoverable agents"`
	Validate ValidateCmd `cmd:"" help:"Validate an agent definition"`
	Watch    WatchCmd    `cmd:"" help:"Re-validate agent definitions as they change"`
	Init     InitCmd     `cmd:"" help:"Scaffold the workspace hook layout"`
	History  HistoryCmd  `cmd:"" help:"Show recent hook runs"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// RunCmd executes one named agent.
type RunCmd struct {
	Agent       string        `arg:"" help:"Agent name"`
	Event       string        `help:"Triggering event type"`
	Context     string        `help:"Extra free-text context for the agent"`
	Target      string        `help:"File the triggering action touches"`
	Tool        string        `help:"Name of the triggering tool"`
	Timeout     time.Duration `help:"Execution timeout (100ms..30s)"`
	Blocking    bool          `help:"Force blocking mode"`
	NonBlocking bool          `help:"Force non-blocking mode"`
	DryRun      bool          `help:"Report what would run without invoking anything"`
	IncludeHost bool          `help:"Include host metadata in the context"`
	Mapping     string        `help:"Custom event-mapping resource path"`
}

// EventCmd executes all agents subscribed to an event.
type EventCmd struct {
	Event       string        `arg:"" help:"Event type"`
	Target      string        `help:"File the triggering action touches"`
	Tool        string        `help:"Name of the triggering tool"`
	Timeout     time.Duration `help:"Execution timeout (100ms..30s)"`
	Blocking    bool          `help:"Force blocking mode for every agent"`
	NonBlocking bool          `help:"Force non-blocking mode for every agent"`
	DryRun      bool          `help:"Report what would run without invoking anything"`
	IncludeHost bool          `help:"Include host metadata in the context"`
	Mapping     string        `help:"Custom event-mapping resource path"`
}

// ListCmd lists discoverable agents from both tiers.
type ListCmd struct{}

// ValidateCmd validates one agent by name or definition file path.
type ValidateCmd struct {
	Agent  string `arg:"" help:"Agent name or definition file path"`
	Strict bool   `help:"Apply strict validation (fields, body, security scan)" default:"true" negatable:""`
}

// WatchCmd watches the tier directories and re-validates on change.
type WatchCmd struct{}

// InitCmd scaffolds the workspace-tier layout.
type InitCmd struct{}

// HistoryCmd shows recent runs from the journal.
type HistoryCmd struct {
	Limit int `help:"Maximum number of runs to show" default:"20"`
}

// VersionCmd shows version information.
type VersionCmd struct{}
