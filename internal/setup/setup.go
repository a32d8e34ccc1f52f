// Package setup scaffolds the on-disk layout a workspace needs before
// hooks can run: the agents directory, an event mapping, and a starter
// runner config.
package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Result reports what a scaffold run created and what it left alone.
type Result struct {
	Created []string
	Skipped []string
}

const starterMapping = `# Event-to-agent mapping. Agents listed under an event run when that
# event fires, in ascending priority order (default 100).
events:
  pre_commit:
    - code-reviewer

priorities:
  code-reviewer: 100
`

const starterConfig = `[logging]
level = "info"

[collaborator]
command = "claude"

# [notify]
# target = "https://example.com/hooks"   # or nats://host:4222
`

const starterAgent = `---
name: code-reviewer
description: Reviews staged changes for style problems and obvious bugs before a commit lands.
version: "1.0"
tools:
  - read
  - grep
---

You are a code reviewer. Examine the staged changes described in the
attached context. Point out style problems, likely bugs, and anything
that should block the commit. Be specific about file and line.
`

// Scaffold creates the workspace-tier layout under root. Existing files
// are never overwritten.
func Scaffold(root string) (*Result, error) {
	res := &Result{}

	agentsDir := registry.WorkspaceAgentsDir(root)
	if err := storage.EnsureDir(agentsDir, registry.DirPerm); err != nil {
		return nil, fmt.Errorf("create agents directory: %w", err)
	}
	res.Created = append(res.Created, agentsDir)

	files := []struct {
		path    string
		content string
	}{
		{registry.WorkspaceMappingPath(root), starterMapping},
		{filepath.Join(root, ".claude", "hooks.toml"), starterConfig},
		{filepath.Join(agentsDir, "code-reviewer"+registry.AgentFileExt), starterAgent},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			res.Skipped = append(res.Skipped, f.path)
			continue
		}
		if err := storage.WriteFile(f.path, []byte(f.content), registry.FilePerm); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.path, err)
		}
		res.Created = append(res.Created, f.path)
	}

	// The user-tier state dir is shared across workspaces; create it so
	// first runs do not have to.
	stateDir, err := registry.StateDir()
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureDir(stateDir, registry.DirPerm); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	return res, nil
}
