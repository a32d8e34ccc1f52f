// Package gitstate reads version-control state for the execution context.
package gitstate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// State is a snapshot of the repository at context-assembly time.
type State struct {
	Branch      string `json:"branch"`
	CommitShort string `json:"commitShortId"`
	Dirty       bool   `json:"dirtyFlag"`
	RemoteURL   string `json:"remoteUrl,omitempty"`
}

// Collect gathers version-control state for dir. Returns an error when dir
// is not under version control; callers treat that as "group absent", not
// a failure.
func Collect(ctx context.Context, dir string) (*State, error) {
	branch, err := run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("not under version control: %w", err)
	}

	s := &State{Branch: branch}

	// A repo with no commits yet has a branch but no HEAD commit.
	if commit, err := run(ctx, dir, "rev-parse", "--short", "HEAD"); err == nil {
		s.CommitShort = commit
	}

	if status, err := run(ctx, dir, "status", "--porcelain"); err == nil {
		s.Dirty = status != ""
	}

	// Missing remote is normal for local-only repos.
	if remote, err := run(ctx, dir, "remote", "get-url", "origin"); err == nil {
		s.RemoteURL = remote
	}

	return s, nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
