// Package agentdef defines the agent definition format: a YAML frontmatter
// block followed by free-text body instructions.
package agentdef

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/agenthook/internal/storage"
)

// Definition is a parsed agent definition. Definitions are loaded fresh
// from disk on every invocation and never mutated in place.
type Definition struct {
	// From frontmatter
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`

	// From content
	Body string `yaml:"-"`

	// Location
	SourcePath string       `yaml:"-"`
	OriginTier storage.Tier `yaml:"-"`
}

// Parse parses an agent definition from its raw file content. Only
// structure is enforced here (frontmatter delimiters, valid YAML); field
// requirements are the validator's concern.
func Parse(content string) (*Definition, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	def := &Definition{}
	if err := yaml.Unmarshal([]byte(frontmatter), def); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	def.Body = strings.TrimSpace(body)
	return def, nil
}

// splitFrontmatter extracts the YAML frontmatter block delimited by ---
// lines at the top of the document.
func splitFrontmatter(content string) (frontmatter, body string, err error) {
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", fmt.Errorf("missing frontmatter start marker")
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", fmt.Errorf("missing frontmatter end marker")
	}

	frontmatter = strings.Join(lines[1:end], "\n")
	body = strings.Join(lines[end+1:], "\n")
	return frontmatter, body, nil
}

// HasTool reports whether the definition's capability list names tool.
// An empty list means no tool restriction.
func (d *Definition) HasTool(tool string) bool {
	if len(d.Tools) == 0 {
		return true
	}
	for _, t := range d.Tools {
		if t == tool {
			return true
		}
	}
	return false
}
