package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/openclaw/agenthook/internal/agentdef"
)

// Result is what the external reasoning collaborator returns.
type Result struct {
	Output   string
	TimedOut bool
}

// Invoker is the narrow boundary to the external reasoning collaborator.
// The engine prepares its input and interprets its output; it never
// inspects or constrains what happens in between.
type Invoker interface {
	Invoke(ctx context.Context, def *agentdef.Definition, contextPath string, timeout time.Duration) (Result, error)
}

// CommandInvoker delegates to a host assistant CLI. The agent body is
// passed on stdin and the persisted context path as an argument.
type CommandInvoker struct {
	// Command is the collaborator binary, e.g. "claude".
	Command string
	// Args are prepended before the context path.
	Args []string
}

func (c *CommandInvoker) Invoke(ctx context.Context, def *agentdef.Definition, contextPath string, timeout time.Duration) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, c.Args...), "--context", contextPath)
	cmd := exec.CommandContext(runCtx, c.Command, args...)
	cmd.Stdin = bytes.NewReader([]byte(def.Body))

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{Output: out.String(), TimedOut: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("invoke %s: %w", c.Command, err)
	}
	return Result{Output: out.String()}, nil
}
