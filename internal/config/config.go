// Package config loads the runner's own configuration file (hooks.toml).
// Agent subscriptions live in the separate event-mapping resource; this
// file only configures the runner.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the runner configuration.
type Config struct {
	Logging      LoggingConfig      `toml:"logging"`
	Notify       NotifyConfig       `toml:"notify"`
	Collaborator CollaboratorConfig `toml:"collaborator"`
}

// LoggingConfig controls the diagnostics logger.
type LoggingConfig struct {
	// Level is debug, info, warn, error or critical.
	Level string `toml:"level"`
}

// NotifyConfig controls security-violation notification.
type NotifyConfig struct {
	// Target is a webhook URL (http/https) or a nats:// address.
	// Empty disables notifications.
	Target string `toml:"target"`
}

// CollaboratorConfig names the external reasoning collaborator binary.
type CollaboratorConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:      LoggingConfig{Level: "info"},
		Collaborator: CollaboratorConfig{Command: "claude"},
	}
}

// LoadFile loads configuration from path, over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Load finds and loads the configuration: an explicit path wins, then the
// workspace copy, then the user copy, then defaults. A missing file is
// not an error.
func Load(explicitPath, workspaceRoot string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}
	candidates := []string{
		filepath.Join(workspaceRoot, ".claude", "hooks.toml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".claude", "hooks.toml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return Default(), nil
}
