// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "github.com/pdiddy/formd/pkg/types"

// Value patterns shared by the default specs.
const (
	// identifierPattern matches a filer ID: a run of 8 to 10 digits.
	identifierPattern = `\b(\d{8,10})\b`

	// monetaryPattern matches an optional "$" followed by either a
	// comma-grouped amount or a run of at least four digits.
	monetaryPattern = `(\$?\s*(?:\d{1,3}(?:,\d{3})+|\d{4,})(?:\.\d{2})?)`

	// namePattern takes the leading run of name characters.
	namePattern = `^[:\s-]*([A-Za-z0-9][A-Za-z0-9 ,.&'\-]*)`

	// connectorPattern captures a "to ..." clause through end of line.
	connectorPattern = `(?i)\b(to\s+.+)$`

	// connectorLinePattern accepts a line that itself begins with "to".
	connectorLinePattern = `(?i)^(to\s+.+)$`
)

// defaultOffsets is the closest-first window tried around an anchor.
var defaultOffsets = []int{1, -1, 2, -2}

// DefaultSpecs returns the built-in Form D field specs. The returned slice is
// a fresh copy on each call.
func DefaultSpecs() []FieldSpec {
	amount := func(field types.FieldName, anchors ...Anchor) FieldSpec {
		return FieldSpec{
			Field:   field,
			Anchors: anchors,
			Pattern: monetaryPattern,
			Format:  FormatCurrency,
			Strategies: []Strategy{
				{Kind: types.StrategySameLine},
				{Kind: types.StrategyOffset, Offsets: []int{1, -1, 2, -2}},
			},
		}
	}

	return []FieldSpec{
		{
			Field:   types.FieldCIK,
			Anchors: []Anchor{{Phrase: "CIK"}},
			Pattern: identifierPattern,
			Strategies: []Strategy{
				{Kind: types.StrategySameLine},
				{Kind: types.StrategyOffset, Offsets: []int{1, -1, 2, -2}},
			},
		},
		{
			Field:   types.FieldIssuer,
			Anchors: []Anchor{{Phrase: "Name of Issuer"}},
			Pattern: namePattern,
			Strategies: []Strategy{
				{Kind: types.StrategySameLine},
				{Kind: types.StrategyOffset, Offsets: []int{1, 2}},
			},
		},
		{
			Field:   types.FieldYearOfIncorporation,
			Anchors: []Anchor{{Phrase: "Year of Incorporation"}},
			Strategies: []Strategy{{
				Kind:   types.StrategyMarker,
				Window: 12,
				Candidates: []Candidate{
					{Keyword: "Within Last Five Years", Label: "Within Last Five Years (Checked)", CaptureYear: true},
					{Keyword: "Over Five Years Ago", Label: "Over Five Years Ago (Checked)"},
					{Keyword: "Yet to Be Formed", Label: "Yet to Be Formed (Checked)"},
				},
			}},
		},
		{
			Field:   types.FieldEntityType,
			Anchors: []Anchor{{Phrase: "Entity Type"}},
			Strategies: []Strategy{{
				Kind:   types.StrategyMarker,
				Window: 16,
				Candidates: []Candidate{
					{Keyword: "Corporation"},
					{Keyword: "Limited Partnership"},
					{Keyword: "Limited Liability Company"},
					{Keyword: "General Partnership"},
					{Keyword: "Business Trust"},
					{Keyword: "Other"},
				},
			}},
		},
		amount(types.FieldTotalOffering,
			Anchor{Phrase: "Total Offering Amount"}, Anchor{Phrase: "Total Offering"}),
		amount(types.FieldAmountSold,
			Anchor{Phrase: "Total Amount Sold"}, Anchor{Phrase: "Sold", Exact: true}),
		amount(types.FieldRemaining,
			Anchor{Phrase: "Total Remaining to be Sold"}, Anchor{Phrase: "Total Remaining"}),
		{
			Field:   types.FieldUseOfProceeds,
			Anchors: []Anchor{{Phrase: "Use of Proceeds"}},
			Strategies: []Strategy{
				{Kind: types.StrategySameLine, Pattern: connectorPattern},
				{Kind: types.StrategyOffset, Offsets: []int{1, 2}, Pattern: connectorLinePattern},
			},
		},
	}
}
