// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates Form D field values within a normalized Document.
// Each field is described by a declarative FieldSpec: the anchor phrases that
// mark its position, the value pattern, and an ordered chain of strategies
// (same-line, offset window, checkbox marker) tried until one yields a value.
package extract

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/pkg/types"
)

// ValueFormat post-processes a matched value.
type ValueFormat string

const (
	// FormatVerbatim keeps the matched text as found.
	FormatVerbatim ValueFormat = ""
	// FormatCurrency removes inner whitespace and prefixes "$" when the
	// match has no currency symbol. Thousands separators are kept.
	FormatCurrency ValueFormat = "currency"
)

// Anchor is one phrase variant marking a field's position.
type Anchor struct {
	// Phrase is matched case-insensitively as a substring of a line.
	Phrase string `json:"phrase" yaml:"phrase"`

	// Exact requires the whole line to equal Phrase (case-insensitive).
	Exact bool `json:"exact,omitempty" yaml:"exact,omitempty"`
}

// Candidate is one selectable label of a checkbox-style field.
type Candidate struct {
	// Keyword is the label text searched for.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Label is the resolved value; defaults to Keyword.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// CaptureYear appends " with year YYYY" (or ", year not found").
	CaptureYear bool `json:"capture_year,omitempty" yaml:"capture_year,omitempty"`
}

// Strategy is one step of a field's fallback chain.
type Strategy struct {
	Kind types.StrategyKind `json:"kind" yaml:"kind"`

	// Pattern overrides FieldSpec.Pattern for this step.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Offsets are line offsets from the anchor, tried in order (offset only).
	Offsets []int `json:"offsets,omitempty" yaml:"offsets,omitempty"`

	// Window is the number of lines after the anchor searched (marker only).
	Window int `json:"window,omitempty" yaml:"window,omitempty"`

	// Candidates are the selectable labels (marker only).
	Candidates []Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// FieldSpec describes how to find one field. Specs are static: they are
// compiled once by New and never modified during extraction.
type FieldSpec struct {
	Field      types.FieldName `json:"field" yaml:"field"`
	Anchors    []Anchor        `json:"anchors,omitempty" yaml:"anchors,omitempty"`
	Pattern    string          `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format     ValueFormat     `json:"format,omitempty" yaml:"format,omitempty"`
	Strategies []Strategy      `json:"strategies" yaml:"strategies"`
}

// specFile is the on-disk layout of a specs YAML file.
type specFile struct {
	Fields []FieldSpec `yaml:"fields"`
}

// LoadSpecs reads field specs from a YAML file with a top-level "fields" list.
func LoadSpecs(path string) ([]FieldSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specs %s: %w", path, err)
	}
	var f specFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing specs %s: %w", path, err)
	}
	if len(f.Fields) == 0 {
		return nil, fmt.Errorf("specs %s: no fields defined", path)
	}
	return f.Fields, nil
}

// MarshalSpecs renders specs in the LoadSpecs file layout.
func MarshalSpecs(specs []FieldSpec) ([]byte, error) {
	data, err := yaml.Marshal(specFile{Fields: specs})
	if err != nil {
		return nil, fmt.Errorf("marshaling specs: %w", err)
	}
	return data, nil
}
