package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" {
		t.Errorf("default level = %q", cfg.Logging.Level)
	}
	if cfg.Collaborator.Command != "claude" {
		t.Errorf("default collaborator = %q", cfg.Collaborator.Command)
	}
	if cfg.Notify.Target != "" {
		t.Error("notifications should default to disabled")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.toml")
	content := `
[logging]
level = "debug"

[notify]
target = "https://hooks.example.com/violations"

[collaborator]
command = "claude"
args = ["--print"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Notify.Target != "https://hooks.example.com/violations" {
		t.Errorf("target = %q", cfg.Notify.Target)
	}
	if len(cfg.Collaborator.Args) != 1 || cfg.Collaborator.Args[0] != "--print" {
		t.Errorf("args = %v", cfg.Collaborator.Args)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed config should error")
	}
}

func TestLoad_WorkspaceOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".claude")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hooks.toml"),
		[]byte("[logging]\nlevel = \"warn\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Collaborator.Command != "claude" {
		t.Errorf("collaborator = %q", cfg.Collaborator.Command)
	}
}
