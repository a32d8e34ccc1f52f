// Package validator checks agent definition files for structural and
// content integrity, including a lightweight security scan of the body.
package validator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openclaw/agenthook/internal/agentdef"
	"github.com/openclaw/agenthook/internal/diagnostics"
	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Depth selects how much validation to apply.
type Depth int

const (
	// DepthBasic checks existence, readability, extension, size, text
	// content and frontmatter structure.
	DepthBasic Depth = iota
	// DepthStrict adds field requirements, body length and the content
	// security scan.
	DepthStrict
)

// Validator validates agent definitions. A nil Reporter disables violation
// recording (used by tests that only care about the verdict).
type Validator struct {
	Reporter     *diagnostics.Reporter
	AllowedRoots []string
}

// ValidateFile validates the definition at path and returns it parsed.
// A security finding aborts validation for this agent only; the caller
// decides whether that aborts anything wider.
func (v *Validator) ValidateFile(path string, depth Depth) (*agentdef.Definition, error) {
	if err := storage.ValidatePathSafety(path, v.AllowedRoots...); err != nil {
		return nil, fmt.Errorf("%v: %w", err, diagnostics.ErrValidationFailed)
	}
	if filepath.Ext(path) != registry.AgentFileExt {
		return nil, fmt.Errorf("agent file %s must have %s extension: %w",
			path, registry.AgentFileExt, diagnostics.ErrValidationFailed)
	}

	data, err := storage.ReadFile(path, registry.MaxAgentFileSize)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, diagnostics.ErrValidationFailed)
	}

	def, err := agentdef.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, diagnostics.ErrValidationFailed)
	}
	def.SourcePath = path

	if depth == DepthBasic {
		return def, nil
	}

	if err := v.validateFields(def); err != nil {
		return nil, err
	}
	if err := v.scanBody(def); err != nil {
		return nil, err
	}
	return def, nil
}

// ValidateDefinition applies strict-depth field and content checks to an
// already-loaded definition.
func (v *Validator) ValidateDefinition(def *agentdef.Definition) error {
	if err := v.validateFields(def); err != nil {
		return err
	}
	return v.scanBody(def)
}

// versionPattern accepts semantic or simple numeric versions: 1, 1.2, 1.2.3.
var versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

func (v *Validator) validateFields(def *agentdef.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%s: missing required field name: %w",
			def.SourcePath, diagnostics.ErrValidationFailed)
	}
	if !registry.ValidAgentName(def.Name) {
		return fmt.Errorf("%s: name %q must match %s: %w",
			def.SourcePath, def.Name, registry.AgentNamePattern, diagnostics.ErrValidationFailed)
	}
	if def.Description == "" {
		return fmt.Errorf("%s: missing required field description: %w",
			def.SourcePath, diagnostics.ErrValidationFailed)
	}
	if n := len(def.Description); n < registry.MinDescriptionLen || n > registry.MaxDescriptionLen {
		return fmt.Errorf("%s: description length %d outside %d..%d: %w",
			def.SourcePath, n, registry.MinDescriptionLen, registry.MaxDescriptionLen,
			diagnostics.ErrValidationFailed)
	}
	if def.Version != "" && !versionPattern.MatchString(def.Version) {
		return fmt.Errorf("%s: malformed version %q: %w",
			def.SourcePath, def.Version, diagnostics.ErrValidationFailed)
	}
	for _, tool := range def.Tools {
		if strings.TrimSpace(tool) == "" {
			return fmt.Errorf("%s: empty entry in capability list: %w",
				def.SourcePath, diagnostics.ErrValidationFailed)
		}
	}
	for _, tag := range def.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%s: empty tag: %w", def.SourcePath, diagnostics.ErrValidationFailed)
		}
	}
	if len(def.Body) < registry.MinBodyLen {
		return fmt.Errorf("%s: body content too short (%d chars, minimum %d): %w",
			def.SourcePath, len(def.Body), registry.MinBodyLen, diagnostics.ErrValidationFailed)
	}
	return nil
}
