package diagnostics

import (
	"errors"

	"github.com/openclaw/agenthook/internal/registry"
)

// Failure class sentinels. Components wrap these with %w so callers can map
// any error back to an exit code with ExitCode.
var (
	ErrGeneral           = errors.New("general error")
	ErrValidationFailed  = errors.New("validation failed")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrExecutionFailed   = errors.New("execution failed")
	ErrTimeout           = errors.New("timed out")
	ErrSecurityViolation = errors.New("security violation")
)

// ExitCode maps an error to the process exit code taxonomy. Unclassified
// errors map to the general error code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return registry.ExitOK
	case errors.Is(err, ErrSecurityViolation):
		return registry.ExitSecurityViolation
	case errors.Is(err, ErrTimeout):
		return registry.ExitTimeout
	case errors.Is(err, ErrExecutionFailed):
		return registry.ExitExecutionFailed
	case errors.Is(err, ErrAgentNotFound):
		return registry.ExitAgentNotFound
	case errors.Is(err, ErrValidationFailed):
		return registry.ExitValidationFailed
	default:
		return registry.ExitGeneralError
	}
}

// Suggestion returns the recovery hint shown alongside a failure. Every
// failure path ends with one of these so a human knows what to try next.
func Suggestion(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSecurityViolation):
		return "review the agent definition for unsafe content before re-enabling it"
	case errors.Is(err, ErrTimeout):
		return "increase the timeout with --timeout (maximum 30s)"
	case errors.Is(err, ErrAgentNotFound):
		return "run 'agenthook list' to see discoverable agents"
	case errors.Is(err, ErrValidationFailed):
		return "fix the agent file format: YAML frontmatter with name and description, then body text"
	case errors.Is(err, ErrExecutionFailed):
		return "inspect the agent output above; re-invoke after addressing the reported problem"
	default:
		return "check permissions on ~/.claude and re-run with --debug for details"
	}
}
