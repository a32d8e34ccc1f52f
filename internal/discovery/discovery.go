// Package discovery resolves agent names to definition files using the
// two-tier search (workspace overrides user) and loads the event-mapping
// resource that subscribes agents to lifecycle events.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openclaw/agenthook/internal/agentdef"
	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Finder locates and loads agent definitions.
type Finder struct {
	WorkspaceDir string
	UserDir      string
	Log          *diagnostics.Logger
}

// NewFinder builds a Finder rooted at the workspace directory. The user
// tier is resolved from the home directory; its absence is not an error.
func NewFinder(workspaceRoot string, log *diagnostics.Logger) *Finder {
	userDir, err := registry.UserAgentsDir()
	if err != nil {
		log.Warn("user tier unavailable", map[string]interface{}{"error": err.Error()})
		userDir = ""
	}
	return &Finder{
		WorkspaceDir: registry.WorkspaceAgentsDir(workspaceRoot),
		UserDir:      userDir,
		Log:          log,
	}
}

// FindAgent resolves name to its definition. The name is validated before
// any filesystem lookup. Workspace-tier definitions shadow user-tier ones.
func (f *Finder) FindAgent(name string) (*agentdef.Definition, error) {
	if !registry.ValidAgentName(name) {
		return nil, fmt.Errorf("invalid agent name %q: %w", name, diagnostics.ErrValidationFailed)
	}

	path, tier, err := storage.ResolveByTier(name+registry.AgentFileExt, f.WorkspaceDir, f.UserDir)
	if err != nil {
		return nil, fmt.Errorf("agent %q not found in %s or %s: %w",
			name, f.WorkspaceDir, f.UserDir, diagnostics.ErrAgentNotFound)
	}

	return f.load(path, tier)
}

// load reads and parses one definition file.
func (f *Finder) load(path string, tier storage.Tier) (*agentdef.Definition, error) {
	data, err := storage.ReadFile(path, registry.MaxAgentFileSize)
	if err != nil {
		return nil, fmt.Errorf("load agent definition: %w", err)
	}
	def, err := agentdef.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	def.SourcePath = path
	def.OriginTier = tier
	return def, nil
}

// ListAll unions both tiers. On a name collision the workspace entry wins.
// The result is sorted lexicographically by name.
func (f *Finder) ListAll() ([]*agentdef.Definition, error) {
	seen := make(map[string]*agentdef.Definition)

	// User tier first so workspace entries overwrite on collision.
	for _, t := range []struct {
		dir  string
		tier storage.Tier
	}{
		{f.UserDir, storage.TierUser},
		{f.WorkspaceDir, storage.TierWorkspace},
	} {
		if t.dir == "" {
			continue
		}
		entries, err := os.ReadDir(t.dir)
		if err != nil {
			continue // missing tier directory is not an error
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), registry.AgentFileExt) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), registry.AgentFileExt)
			if !registry.ValidAgentName(name) {
				f.Log.Warn("skipping agent with invalid name", map[string]interface{}{
					"file": e.Name(), "tier": string(t.tier),
				})
				continue
			}
			def, err := f.load(filepath.Join(t.dir, e.Name()), t.tier)
			if err != nil {
				f.Log.Warn("skipping unparseable agent", map[string]interface{}{
					"file": e.Name(), "error": err.Error(),
				})
				continue
			}
			seen[name] = def
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]*agentdef.Definition, 0, len(names))
	for _, n := range names {
		out = append(out, seen[n])
	}
	return out, nil
}
