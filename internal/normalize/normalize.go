// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw document content into the line sequence the
// extractors operate on.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/formd/pkg/types"
)

// Normalize converts paragraph-level text blocks into a Document. Each block
// is NFKC-normalized (non-breaking spaces, full-width digits and similar
// compatibility forms become their plain equivalents), split on embedded
// line breaks and trimmed. Empty and whitespace-only lines are dropped; the
// order of the remaining lines is preserved exactly.
func Normalize(blocks []string) types.Document {
	var lines []string
	for _, block := range blocks {
		block = norm.NFKC.String(block)
		block = strings.ReplaceAll(block, "\r\n", "\n")
		for _, line := range strings.FieldsFunc(block, isLineBreak) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	}
	return types.NewDocument(lines)
}

// FromText normalizes a plain-text document where each line is one block.
func FromText(text string) types.Document {
	return Normalize([]string{text})
}

// isLineBreak reports line separators, including the vertical tab Word
// emits for soft returns.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u2028', '\u2029':
		return true
	}
	return false
}
