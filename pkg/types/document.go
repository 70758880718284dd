// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the formd pipeline:
// the normalized Document, extracted field values, the FilingRecord and the
// stage configuration structs.
package types

import "strings"

// Document is the ordered line sequence every extractor reads. Lines are
// non-empty and trimmed; index order is document reading order. A Document
// is immutable once produced: callers only see copies of its lines.
type Document struct {
	lines []string
}

// NewDocument wraps lines as a Document. The slice is copied, so later
// changes to lines do not reach the Document.
func NewDocument(lines []string) Document {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return Document{lines: cp}
}

// Len returns the number of lines.
func (d Document) Len() int { return len(d.lines) }

// IsEmpty reports whether the document has no lines.
func (d Document) IsEmpty() bool { return len(d.lines) == 0 }

// Line returns the line at index i. ok is false when i is out of range.
func (d Document) Line(i int) (line string, ok bool) {
	if i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

// Lines returns a copy of the line sequence.
func (d Document) Lines() []string {
	cp := make([]string, len(d.lines))
	copy(cp, d.lines)
	return cp
}

// Text joins the lines with newlines.
func (d Document) Text() string {
	return strings.Join(d.lines, "\n")
}
