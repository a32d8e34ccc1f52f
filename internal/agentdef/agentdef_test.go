package agentdef

import (
	"strings"
	"testing"
)

const sample = `---
name: style-enforcer
description: Enforces project code style conventions before writes.
version: 1.2.0
tools:
  - read
  - grep
tags:
  - style
---
Check the target file against the project style guide and report
violations with file and line references.
`

func TestParse(t *testing.T) {
	def, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if def.Name != "style-enforcer" {
		t.Errorf("name = %q", def.Name)
	}
	if def.Version != "1.2.0" {
		t.Errorf("version = %q", def.Version)
	}
	if len(def.Tools) != 2 || def.Tools[0] != "read" {
		t.Errorf("tools = %v", def.Tools)
	}
	if len(def.Tags) != 1 || def.Tags[0] != "style" {
		t.Errorf("tags = %v", def.Tags)
	}
	if !strings.HasPrefix(def.Body, "Check the target file") {
		t.Errorf("body = %q", def.Body)
	}
}

func TestParse_MissingStartMarker(t *testing.T) {
	if _, err := Parse("name: x\n---\nbody"); err == nil {
		t.Error("expected error for missing start marker")
	}
}

func TestParse_MissingEndMarker(t *testing.T) {
	if _, err := Parse("---\nname: x\nbody without end"); err == nil {
		t.Error("expected error for missing end marker")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse("---\nname: [unclosed\n---\nbody"); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

// Missing optional fields parse fine; required-field checks live in the
// validator, not the parser.
func TestParse_MinimalFrontmatter(t *testing.T) {
	def, err := Parse("---\nname: minimal\n---\nsome body text here\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if def.Description != "" || def.Version != "" {
		t.Error("optional fields should be empty")
	}
}

func TestHasTool(t *testing.T) {
	def := &Definition{Tools: []string{"read", "grep"}}
	if !def.HasTool("read") {
		t.Error("read should be allowed")
	}
	if def.HasTool("bash") {
		t.Error("bash should not be allowed")
	}
	unrestricted := &Definition{}
	if !unrestricted.HasTool("bash") {
		t.Error("empty capability list means unrestricted")
	}
}
