package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

func testFinder(t *testing.T) *Finder {
	t.Helper()
	log, err := diagnostics.New("")
	if err != nil {
		t.Fatal(err)
	}
	log.SetStderr(&bytes.Buffer{})
	return &Finder{
		WorkspaceDir: t.TempDir(),
		UserDir:      t.TempDir(),
		Log:          log,
	}
}

func writeAgent(t *testing.T, dir, name, description string) {
	t.Helper()
	content := fmt.Sprintf("---\nname: %s\ndescription: %s\n---\nInstructions for %s go here.\n",
		name, description, name)
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// If both tiers define the same name, discovery returns the workspace one.
func TestFindAgent_WorkspaceShadowsUser(t *testing.T) {
	f := testFinder(t)
	writeAgent(t, f.WorkspaceDir, "reviewer", "Workspace copy of the reviewer agent.")
	writeAgent(t, f.UserDir, "reviewer", "User copy of the reviewer agent.")

	def, err := f.FindAgent("reviewer")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if def.OriginTier != storage.TierWorkspace {
		t.Errorf("tier = %s, want workspace", def.OriginTier)
	}
	if def.Description != "Workspace copy of the reviewer agent." {
		t.Errorf("description = %q", def.Description)
	}
}

func TestFindAgent_UserFallback(t *testing.T) {
	f := testFinder(t)
	writeAgent(t, f.UserDir, "auditor", "Audits changes for security issues.")

	def, err := f.FindAgent("auditor")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if def.OriginTier != storage.TierUser {
		t.Errorf("tier = %s, want user", def.OriginTier)
	}
}

func TestFindAgent_NotFound(t *testing.T) {
	f := testFinder(t)
	_, err := f.FindAgent("missing-agent")
	if !errors.Is(err, diagnostics.ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

// An invalid name fails validation before any filesystem lookup.
func TestFindAgent_InvalidNameRejectedFirst(t *testing.T) {
	f := testFinder(t)
	f.WorkspaceDir = filepath.Join(t.TempDir(), "does-not-exist")
	_, err := f.FindAgent("UNKNOWN-123")
	if !errors.Is(err, diagnostics.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestListAll(t *testing.T) {
	f := testFinder(t)
	writeAgent(t, f.WorkspaceDir, "zeta", "Workspace agent sorted last by name.")
	writeAgent(t, f.WorkspaceDir, "shared", "Workspace wins on collisions.")
	writeAgent(t, f.UserDir, "shared", "User copy of shared agent definition.")
	writeAgent(t, f.UserDir, "alpha", "User agent sorted first by name.")

	defs, err := f.ListAll()
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("got %d agents, want 3", len(defs))
	}
	if defs[0].Name != "alpha" || defs[1].Name != "shared" || defs[2].Name != "zeta" {
		t.Errorf("order = %s, %s, %s", defs[0].Name, defs[1].Name, defs[2].Name)
	}
	if defs[1].OriginTier != storage.TierWorkspace {
		t.Error("collision should resolve to workspace tier")
	}
}

func TestListAll_MissingDirs(t *testing.T) {
	f := testFinder(t)
	f.WorkspaceDir = filepath.Join(t.TempDir(), "absent")
	f.UserDir = ""
	defs, err := f.ListAll()
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("expected empty listing, got %d", len(defs))
	}
}

func writeMapping(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, registry.MappingResource)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetAgentsForEvent_PriorityOrder(t *testing.T) {
	f := testFinder(t)
	writeAgent(t, f.WorkspaceDir, "style-enforcer", "Enforces code style conventions.")
	writeAgent(t, f.WorkspaceDir, "security-auditor", "Scans writes for security issues.")

	path := writeMapping(t, t.TempDir(), `
events:
  pre_write:
    - security-auditor
    - style-enforcer
priorities:
  style-enforcer: 1
  security-auditor: 2
`)
	m := f.LoadMapping(path, "")

	subs := f.GetAgentsForEvent(m, registry.EventPreWrite)
	if len(subs) != 2 {
		t.Fatalf("got %d subscriptions, want 2", len(subs))
	}
	if subs[0].Name != "style-enforcer" || subs[1].Name != "security-auditor" {
		t.Errorf("order = %s, %s; want style-enforcer first", subs[0].Name, subs[1].Name)
	}
}

// Unresolvable entries are dropped with a warning, never fatal.
func TestGetAgentsForEvent_DropsUnresolvable(t *testing.T) {
	f := testFinder(t)
	writeAgent(t, f.WorkspaceDir, "real-agent", "The only agent that exists.")

	path := writeMapping(t, t.TempDir(), `
events:
  pre_commit:
    - real-agent
    - ghost-agent
`)
	m := f.LoadMapping(path, "")

	subs := f.GetAgentsForEvent(m, registry.EventPreCommit)
	if len(subs) != 1 || subs[0].Name != "real-agent" {
		t.Errorf("subs = %v, want only real-agent", subs)
	}
}

// Events absent from the mapping yield an empty list without error.
func TestGetAgentsForEvent_UnmappedEvent(t *testing.T) {
	f := testFinder(t)
	m := f.LoadMapping(writeMapping(t, t.TempDir(), "events: {}\n"), "")
	if subs := f.GetAgentsForEvent(m, registry.EventSessionEnd); len(subs) != 0 {
		t.Errorf("expected empty list, got %v", subs)
	}
}

func TestLoadMapping_MalformedDegrades(t *testing.T) {
	f := testFinder(t)
	path := writeMapping(t, t.TempDir(), "events: [not: a: map\n")
	m := f.LoadMapping(path, "")
	if len(m.Events) != 0 {
		t.Errorf("malformed mapping should degrade to empty, got %v", m.Events)
	}
}

func TestLoadMapping_MissingDegrades(t *testing.T) {
	f := testFinder(t)
	m := f.LoadMapping(filepath.Join(t.TempDir(), "absent.yaml"), "")
	if len(m.Events) != 0 {
		t.Error("missing mapping should degrade to empty")
	}
}

func TestGetPriority_Default(t *testing.T) {
	m := &Mapping{Priorities: map[string]int{"known": 5}}
	if m.GetPriority("known") != 5 {
		t.Error("explicit priority not returned")
	}
	if m.GetPriority("unknown") != DefaultPriority {
		t.Error("default priority not applied")
	}
}
