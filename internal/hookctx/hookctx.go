// Package hookctx assembles the structured execution context handed to an
// agent: event metadata, environment, version-control state and target
// file metadata, persisted to a secure temp resource for the run.
package hookctx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/gitstate"
	"github.com/openclaw/agenthook/internal/invocation"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Context is the serializable snapshot supplied to the reasoning
// collaborator. Every group except Metadata and Event is optional; a
// missing collaborator degrades to an absent group.
type Context struct {
	Metadata       Metadata        `json:"metadata"`
	Event          EventInfo       `json:"event"`
	Environment    *Environment    `json:"environment,omitempty"`
	VersionControl *gitstate.State `json:"versionControl,omitempty"`
	TargetFile     *TargetFile     `json:"targetFile,omitempty"`
	HostSystem     *HostSystem     `json:"hostSystem,omitempty"`
	UserNote       string          `json:"userNote,omitempty"`
}

// Metadata identifies the context itself.
type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	SchemaVersion string    `json:"schemaVersion"`
}

// EventInfo describes the triggering event.
type EventInfo struct {
	Type           string `json:"type"`
	TriggeringTool string `json:"triggeringTool,omitempty"`
	AgentName      string `json:"agentName,omitempty"`
}

// Environment describes the invoking process.
type Environment struct {
	User             string `json:"user"`
	WorkingDirectory string `json:"workingDirectory"`
	ProcessID        int    `json:"processId"`
	SessionID        string `json:"sessionId"`
}

// TargetFile describes the file the triggering action touches.
type TargetFile struct {
	Path           string `json:"path"`
	Name           string `json:"name"`
	Directory      string `json:"directory"`
	Extension      string `json:"extension,omitempty"`
	Kind           string `json:"kind"`
	SizeBytes      int64  `json:"sizeBytes,omitempty"`
	PermissionBits string `json:"permissionBits,omitempty"`
	Exists         bool   `json:"exists"`
}

// HostSystem describes the host, gathered only on request.
type HostSystem struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Hostname  string `json:"hostname,omitempty"`
	GoVersion string `json:"goVersion"`
	NumCPU    int    `json:"numCpu"`
}

// Assembler builds, persists and cleans up one run's context.
type Assembler struct {
	Log *diagnostics.Logger

	res *storage.TempResource
}

// Gather builds the context for inv. Optional groups that cannot be built
// are logged at warn level and omitted; only the mandatory metadata and
// event groups can make Gather fail.
func (a *Assembler) Gather(ctx context.Context, inv *invocation.ParsedInvocation, workdir string) (*Context, error) {
	if inv.Event == "" && inv.AgentName == "" {
		return nil, fmt.Errorf("cannot build event group without event or agent: %w", diagnostics.ErrGeneral)
	}

	c := &Context{
		Metadata: Metadata{
			Timestamp:     time.Now().UTC(),
			SchemaVersion: registry.ContextSchema,
		},
		Event: EventInfo{
			Type:           string(inv.Event),
			TriggeringTool: inv.TriggeringTool,
			AgentName:      inv.AgentName,
		},
		UserNote: inv.ExtraContext,
	}

	c.Environment = a.gatherEnvironment(workdir)

	if vc, err := gitstate.Collect(ctx, workdir); err != nil {
		a.Log.Warn("version control state unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		c.VersionControl = vc
	}

	if inv.TargetFile != "" {
		c.TargetFile = gatherTargetFile(inv.TargetFile)
	}

	if inv.IncludeHost {
		c.HostSystem = gatherHost()
	}

	return c, nil
}

func (a *Assembler) gatherEnvironment(workdir string) *Environment {
	env := &Environment{
		WorkingDirectory: workdir,
		ProcessID:        os.Getpid(),
		SessionID:        sessionID(),
	}
	if u, err := user.Current(); err != nil {
		a.Log.Warn("current user unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		env.User = u.Username
	}
	return env
}

// sessionID reuses the host session identity when present so events from
// one session correlate; otherwise each run gets a fresh id.
func sessionID() string {
	if id := os.Getenv("AGENTHOOK_SESSION_ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func gatherTargetFile(path string) *TargetFile {
	tf := &TargetFile{
		Path:      path,
		Name:      filepath.Base(path),
		Directory: filepath.Dir(path),
		Extension: strings.TrimPrefix(filepath.Ext(path), "."),
	}
	info, err := os.Stat(path)
	if err != nil {
		tf.Kind = "missing"
		return tf
	}
	tf.Exists = true
	tf.SizeBytes = info.Size()
	tf.PermissionBits = fmt.Sprintf("%04o", info.Mode().Perm())
	if info.IsDir() {
		tf.Kind = "directory"
	} else {
		tf.Kind = "file"
	}
	return tf
}

func gatherHost() *HostSystem {
	h := &HostSystem{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}
	if name, err := os.Hostname(); err == nil {
		h.Hostname = name
	}
	return h
}

// Validate checks the mandatory groups are present before use.
func Validate(c *Context) error {
	if c == nil {
		return fmt.Errorf("nil context: %w", diagnostics.ErrGeneral)
	}
	if c.Metadata.SchemaVersion == "" || c.Metadata.Timestamp.IsZero() {
		return fmt.Errorf("context metadata group incomplete: %w", diagnostics.ErrGeneral)
	}
	if c.Event.Type == "" && c.Event.AgentName == "" {
		return fmt.Errorf("context event group incomplete: %w", diagnostics.ErrGeneral)
	}
	return nil
}

// Persist serializes the context to a fresh secure temp resource and
// returns its path.
func (a *Assembler) Persist(c *Context) (string, error) {
	if err := Validate(c); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize context: %w", err)
	}
	res, err := storage.CreateTempResource("context", ".json")
	if err != nil {
		return "", err
	}
	if err := res.Write(data); err != nil {
		res.Remove()
		return "", err
	}
	a.res = res
	return res.Path(), nil
}

// Load re-reads a persisted context.
func Load(path string) (*Context, error) {
	data, err := storage.ReadFile(path, registry.MaxAgentFileSize)
	if err != nil {
		return nil, err
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}
	return &c, nil
}

// Cleanup deletes the persisted resource and resets in-memory state. It is
// idempotent and runs on every exit path of a run.
func (a *Assembler) Cleanup() error {
	if a.res == nil {
		return nil
	}
	err := a.res.Remove()
	a.res = nil
	return err
}
