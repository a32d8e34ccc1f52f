package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openclaw/agenthook/internal/agentdef"
	"github.com/openclaw/agenthook/internal/diagnostics"
)

// Violation kinds recorded in the violation log.
const (
	KindDangerousCommand   = "dangerous_command"
	KindEmbeddedCredential = "embedded_credential"
)

// dangerousPatterns are command substrings that have no place in an agent
// definition body.
var dangerousPatterns = []struct {
	pattern *regexp.Regexp
	detail  string
}{
	{regexp.MustCompile(`rm\s+(-[a-zA-Z]*\s+)*-[a-zA-Z]*[rf][a-zA-Z]*\s+(/|~)`), "unrestricted recursive delete"},
	{regexp.MustCompile(`(curl|wget)[^\n|]*\|\s*(ba|z|da)?sh`), "pipe remote download to shell"},
	{regexp.MustCompile(`mkfs\.`), "filesystem format command"},
	{regexp.MustCompile(`dd\s+if=[^\s]+\s+of=/dev/`), "raw device write"},
	{regexp.MustCompile(`:\(\)\s*{\s*:\|:&\s*}`), "fork bomb"},
	{regexp.MustCompile(`chmod\s+(-[a-zA-Z]+\s+)*777\s+/`), "world-writable root permissions"},
	{regexp.MustCompile(`>\s*/dev/sd[a-z]`), "redirect onto block device"},
}

// credentialPattern flags probable embedded secrets: key/secret/token/
// password assignments with a literal value of credential-like length.
var credentialPattern = regexp.MustCompile(
	`(?i)(api[_-]?key|secret|token|password|passwd)\s*[:=]\s*["']?[A-Za-z0-9_\-/+]{8,}`)

// scanBody runs the content security scan over the definition body. Any
// finding is recorded as a security violation and fails validation for
// this agent only.
func (v *Validator) scanBody(def *agentdef.Definition) error {
	body := def.Body

	for _, p := range dangerousPatterns {
		if loc := p.pattern.FindString(body); loc != "" {
			v.report(KindDangerousCommand, p.detail, def.SourcePath)
			return fmt.Errorf("%s: %s (%q): %w",
				def.SourcePath, p.detail, truncate(loc, 60), diagnostics.ErrSecurityViolation)
		}
	}

	if loc := credentialPattern.FindString(body); loc != "" {
		v.report(KindEmbeddedCredential, "probable embedded credential", def.SourcePath)
		return fmt.Errorf("%s: probable embedded credential (%q): %w",
			def.SourcePath, redact(loc), diagnostics.ErrSecurityViolation)
	}

	return nil
}

func (v *Validator) report(kind, detail, path string) {
	if v.Reporter != nil {
		v.Reporter.HandleSecurityViolation(kind, detail, path)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// redact keeps the key name but hides the matched value.
func redact(match string) string {
	for _, sep := range []string{":", "="} {
		if i := strings.Index(match, sep); i >= 0 {
			return match[:i+1] + "[redacted]"
		}
	}
	return "[redacted]"
}
