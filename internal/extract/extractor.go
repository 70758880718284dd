// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/formd/pkg/types"
)

const defaultMarkerWindow = 12

// markerPrefix matches the glyphs a checked box renders as in extracted
// text: ballot boxes, check marks, a filled square, the Greek capital pi
// some Word templates use, and an X written plain, bracketed or
// parenthesized.
const markerPrefix = `(?:[☒☑✓✔✗✘■Π]|\[[xX]\]|\([xX]\)|\b[xX])\s*`

// yearRe matches a four-digit year in the 1900s or 2000s.
var yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// compiledAnchor is an Anchor with its matcher built.
type compiledAnchor struct {
	Anchor
	re *regexp.Regexp
}

// compiledCandidate is a Candidate with its plain and marked matchers.
type compiledCandidate struct {
	Candidate
	plain  *regexp.Regexp
	marked *regexp.Regexp
}

// compiledStrategy is a Strategy with its pattern and candidates resolved.
type compiledStrategy struct {
	kind       types.StrategyKind
	pattern    *regexp.Regexp
	offsets    []int
	window     int
	candidates []compiledCandidate
}

// compiledSpec is a FieldSpec ready to run.
type compiledSpec struct {
	field      types.FieldName
	anchors    []compiledAnchor
	format     ValueFormat
	strategies []compiledStrategy
}

// Options tune record-level derivations.
type Options struct {
	// DealKeyword marks a tranche deal when found anywhere in the document.
	// Empty uses "Tranche".
	DealKeyword string
}

// Extractor runs a fixed set of compiled field specs. It holds no mutable
// state, so one Extractor may be shared across goroutines.
type Extractor struct {
	specs       []FieldSpec
	compiled    []compiledSpec
	dealKeyword string
}

// New compiles specs into an Extractor. It rejects unknown fields, duplicate
// fields, invalid patterns, unknown strategy kinds and marker strategies
// without candidates.
func New(specs []FieldSpec, opts Options) (*Extractor, error) {
	e := &Extractor{
		specs:       make([]FieldSpec, len(specs)),
		dealKeyword: opts.DealKeyword,
	}
	copy(e.specs, specs)
	if e.dealKeyword == "" {
		e.dealKeyword = defaultDealKeyword
	}

	seen := make(map[types.FieldName]bool, len(specs))
	for _, spec := range specs {
		if !spec.Field.Valid() {
			return nil, fmt.Errorf("spec %q: unknown field", spec.Field)
		}
		if seen[spec.Field] {
			return nil, fmt.Errorf("spec %q: defined more than once", spec.Field)
		}
		seen[spec.Field] = true

		cs, err := compileSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("spec %q: %w", spec.Field, err)
		}
		e.compiled = append(e.compiled, cs)
	}
	return e, nil
}

// Specs returns a copy of the specs the Extractor was built from.
func (e *Extractor) Specs() []FieldSpec {
	cp := make([]FieldSpec, len(e.specs))
	copy(cp, e.specs)
	return cp
}

func compileSpec(spec FieldSpec) (compiledSpec, error) {
	cs := compiledSpec{field: spec.Field, format: spec.Format}

	switch spec.Format {
	case FormatVerbatim, FormatCurrency:
	default:
		return cs, fmt.Errorf("unknown format %q", spec.Format)
	}

	for _, a := range spec.Anchors {
		if strings.TrimSpace(a.Phrase) == "" {
			return cs, fmt.Errorf("empty anchor phrase")
		}
		cs.anchors = append(cs.anchors, compiledAnchor{
			Anchor: a,
			re:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(a.Phrase)),
		})
	}

	if len(spec.Strategies) == 0 {
		return cs, fmt.Errorf("no strategies")
	}

	for i, st := range spec.Strategies {
		c := compiledStrategy{kind: st.Kind}
		switch st.Kind {
		case types.StrategySameLine, types.StrategyOffset:
			src := st.Pattern
			if src == "" {
				src = spec.Pattern
			}
			if src == "" {
				return cs, fmt.Errorf("strategy %d (%s): no pattern", i, st.Kind)
			}
			re, err := regexp.Compile(src)
			if err != nil {
				return cs, fmt.Errorf("strategy %d (%s): invalid pattern: %w", i, st.Kind, err)
			}
			c.pattern = re
			if len(cs.anchors) == 0 {
				return cs, fmt.Errorf("strategy %d (%s): requires an anchor", i, st.Kind)
			}
			if st.Kind == types.StrategyOffset {
				c.offsets = st.Offsets
				if len(c.offsets) == 0 {
					c.offsets = defaultOffsets
				}
			}
		case types.StrategyMarker:
			if len(st.Candidates) == 0 {
				return cs, fmt.Errorf("strategy %d (marker): no candidates", i)
			}
			c.window = st.Window
			if c.window <= 0 {
				c.window = defaultMarkerWindow
			}
			for _, cand := range st.Candidates {
				if strings.TrimSpace(cand.Keyword) == "" {
					return cs, fmt.Errorf("strategy %d (marker): empty candidate keyword", i)
				}
				if cand.Label == "" {
					cand.Label = cand.Keyword
				}
				kw := regexp.QuoteMeta(cand.Keyword)
				c.candidates = append(c.candidates, compiledCandidate{
					Candidate: cand,
					plain:     regexp.MustCompile(`(?i)\b` + kw + `\b`),
					marked:    regexp.MustCompile(`(?i)` + markerPrefix + kw + `\b`),
				})
			}
		default:
			return cs, fmt.Errorf("strategy %d: unknown kind %q", i, st.Kind)
		}
		cs.strategies = append(cs.strategies, c)
	}
	return cs, nil
}

// Extract runs the FieldSpec for field against doc. Fields without one resolve
// to not found.
func (e *Extractor) Extract(doc types.Document, field types.FieldName) types.ExtractedField {
	for _, cs := range e.compiled {
		if cs.field == field {
			return cs.run(doc)
		}
	}
	return types.NotFound(field)
}

// run locates the first anchor occurrence and walks the strategy chain
// against it. Every strategy sees the same anchor line; later occurrences of
// the anchor are never considered.
func (cs compiledSpec) run(doc types.Document) types.ExtractedField {
	anchorIdx, anchor := cs.findAnchor(doc)

	for _, st := range cs.strategies {
		var (
			text string
			line = -1
		)
		switch st.kind {
		case types.StrategySameLine:
			if anchorIdx < 0 {
				continue
			}
			text, line = st.sameLine(doc, anchorIdx, anchor)
		case types.StrategyOffset:
			if anchorIdx < 0 {
				continue
			}
			text, line = st.offsetWindow(doc, anchorIdx)
		case types.StrategyMarker:
			text, line = st.marker(doc, anchorIdx)
		}
		if line < 0 {
			continue
		}
		if cs.format == FormatCurrency {
			text = formatCurrency(text)
		}
		return types.ExtractedField{
			Field:    cs.field,
			Value:    types.Found(text),
			Line:     line,
			Strategy: st.kind,
		}
	}
	return types.NotFound(cs.field)
}

// findAnchor returns the index of the first line matching any anchor variant,
// and the variant that matched. The index is -1 when no line matches.
func (cs compiledSpec) findAnchor(doc types.Document) (int, compiledAnchor) {
	for i := 0; i < doc.Len(); i++ {
		line, _ := doc.Line(i)
		for _, a := range cs.anchors {
			if a.Exact {
				if strings.EqualFold(line, a.Phrase) {
					return i, a
				}
				continue
			}
			if a.re.MatchString(line) {
				return i, a
			}
		}
	}
	return -1, compiledAnchor{}
}

// sameLine applies the pattern to the text following the anchor phrase.
func (st compiledStrategy) sameLine(doc types.Document, idx int, a compiledAnchor) (string, int) {
	line, _ := doc.Line(idx)
	if a.Exact {
		return "", -1
	}
	loc := a.re.FindStringIndex(line)
	if loc == nil {
		return "", -1
	}
	if v, ok := matchValue(st.pattern, line[loc[1]:]); ok {
		return v, idx
	}
	return "", -1
}

// offsetWindow tries each offset around the anchor in order. Offsets that
// fall outside the document are skipped.
func (st compiledStrategy) offsetWindow(doc types.Document, idx int) (string, int) {
	for _, off := range st.offsets {
		j := idx + off
		line, ok := doc.Line(j)
		if !ok {
			continue
		}
		if v, ok := matchValue(st.pattern, line); ok {
			return v, j
		}
	}
	return "", -1
}

// marker resolves a checkbox-style field within the neighborhood starting at
// the anchor line, or across the whole document when no anchor was found.
// A candidate rendered next to a check glyph wins over a bare label; among
// bare labels the first one in line order wins.
func (st compiledStrategy) marker(doc types.Document, idx int) (string, int) {
	start, end := 0, doc.Len()
	if idx >= 0 {
		start = idx
		end = min(idx+st.window+1, doc.Len())
	}

	for _, marked := range []bool{true, false} {
		for i := start; i < end; i++ {
			line, _ := doc.Line(i)
			for _, c := range st.candidates {
				re := c.plain
				if marked {
					re = c.marked
				}
				loc := re.FindStringIndex(line)
				if loc == nil {
					continue
				}
				if !c.CaptureYear {
					return c.Label, i
				}
				return c.Label + yearSuffix(doc, i, line[loc[1]:]), i
			}
		}
	}
	return "", -1
}

// yearSuffix looks for a year after the candidate keyword, then on the lines
// that follow it, then anywhere in the document. Years printed before the
// candidate, such as a filing date, only count when nothing follows it.
func yearSuffix(doc types.Document, idx int, rest string) string {
	if m := yearRe.FindStringSubmatch(rest); m != nil {
		return " with year " + m[1]
	}
	for j := idx + 1; j < doc.Len(); j++ {
		line, _ := doc.Line(j)
		if m := yearRe.FindStringSubmatch(line); m != nil {
			return " with year " + m[1]
		}
	}
	if m := yearRe.FindStringSubmatch(doc.Text()); m != nil {
		return " with year " + m[1]
	}
	return ", year not found"
}

// matchValue applies re to s and returns capture group 1 when the pattern
// has groups, else the whole match. Empty results do not count as a match.
func matchValue(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// formatCurrency canonicalizes a monetary match to "$" plus the digits and
// separators as found.
func formatCurrency(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if !strings.HasPrefix(s, "$") {
		s = "$" + s
	}
	return s
}
