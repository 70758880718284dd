// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FieldName identifies one extracted Form D field.
type FieldName string

const (
	FieldCIK                 FieldName = "cik"
	FieldIssuer              FieldName = "issuer"
	FieldYearOfIncorporation FieldName = "year_of_incorporation"
	FieldEntityType          FieldName = "entity_type"
	FieldTotalOffering       FieldName = "total_offering"
	FieldAmountSold          FieldName = "amount_sold"
	FieldRemaining           FieldName = "remaining"
	FieldUseOfProceeds       FieldName = "use_of_proceeds"
)

// Fields is the canonical field order used by records, tables and export rows.
var Fields = []FieldName{
	FieldCIK,
	FieldIssuer,
	FieldYearOfIncorporation,
	FieldEntityType,
	FieldTotalOffering,
	FieldAmountSold,
	FieldRemaining,
	FieldUseOfProceeds,
}

var fieldLabels = map[FieldName]string{
	FieldCIK:                 "CIK",
	FieldIssuer:              "Issuer",
	FieldYearOfIncorporation: "Year of Incorporation",
	FieldEntityType:          "Entity Type",
	FieldTotalOffering:       "Total Offering",
	FieldAmountSold:          "Amount Sold",
	FieldRemaining:           "Remaining",
	FieldUseOfProceeds:       "Use of Proceeds",
}

// Label returns the display label of the field, or the raw name for fields
// outside the canonical set.
func (f FieldName) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Valid reports whether f is one of the canonical fields.
func (f FieldName) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// Labels for the two derived record attributes.
const (
	LabelValid    = "Valid Filing?"
	LabelDealType = "Deal Type"
)

// NotFoundText is the sentinel rendered for a field that did not resolve.
const NotFoundText = "Not found"

// Value is an optional field value. The zero Value means "not found", which
// is distinct from a found value whose text is empty.
type Value struct {
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Found bool   `json:"found" yaml:"found"`
}

// Found returns a found Value holding text.
func Found(text string) Value {
	return Value{Text: text, Found: true}
}

// String renders the value, substituting NotFoundText when absent.
func (v Value) String() string {
	if !v.Found {
		return NotFoundText
	}
	return v.Text
}

// StrategyKind names an anchor-resolution strategy.
type StrategyKind string

const (
	StrategySameLine StrategyKind = "same_line"
	StrategyOffset   StrategyKind = "offset"
	StrategyMarker   StrategyKind = "marker"
)

// ExtractedField is the result of running one field spec against a Document.
type ExtractedField struct {
	Field FieldName `json:"field" yaml:"field"`
	Value Value     `json:"value" yaml:"value"`

	// Line is the index of the line the value came from, or -1.
	Line int `json:"line" yaml:"line"`

	// Strategy is the strategy that produced the value; empty when not found.
	Strategy StrategyKind `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// NotFound returns the unresolved result for field.
func NotFound(field FieldName) ExtractedField {
	return ExtractedField{Field: field, Line: -1}
}

// DealType classifies the offering.
type DealType string

const (
	DealNew     DealType = "new"
	DealTranche DealType = "tranche"
)

// Label returns the capitalized display form ("New", "Tranche").
func (d DealType) Label() string {
	switch d {
	case DealTranche:
		return "Tranche"
	default:
		return "New"
	}
}

// FilingRecord aggregates the extracted fields of one document plus the two
// derived attributes. Fields holds exactly one entry per name in Fields, in
// that order.
type FilingRecord struct {
	Fields   []ExtractedField `json:"fields" yaml:"fields"`
	Valid    bool             `json:"valid" yaml:"valid"`
	DealType DealType         `json:"deal_type" yaml:"deal_type"`
}

// Field returns the extracted field for name. A missing entry resolves to
// NotFound(name).
func (r FilingRecord) Field(name FieldName) ExtractedField {
	for _, f := range r.Fields {
		if f.Field == name {
			return f
		}
	}
	return NotFound(name)
}

// Get returns the value of field name.
func (r FilingRecord) Get(name FieldName) Value {
	return r.Field(name).Value
}

// ValidLabel renders the validity flag as "Yes" or "No".
func (r FilingRecord) ValidLabel() string {
	if r.Valid {
		return "Yes"
	}
	return "No"
}

// Pair is one (Field, Value) row of the rendered record.
type Pair struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// Pairs returns the record as ordered (Field, Value) rows: the canonical
// fields followed by validity and deal type.
func (r FilingRecord) Pairs() []Pair {
	pairs := make([]Pair, 0, len(Fields)+2)
	for _, name := range Fields {
		pairs = append(pairs, Pair{Field: name.Label(), Value: r.Get(name).String()})
	}
	pairs = append(pairs,
		Pair{Field: LabelValid, Value: r.ValidLabel()},
		Pair{Field: LabelDealType, Value: r.DealType.Label()},
	)
	return pairs
}

// Map returns the record keyed by display label.
func (r FilingRecord) Map() map[string]string {
	pairs := r.Pairs()
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Field] = p.Value
	}
	return m
}

// Filing is the persisted envelope around one extraction run.
type Filing struct {
	// ID is a stable identifier derived from the normalized document text.
	ID string `json:"id" yaml:"id"`

	// Source is the path of the input document.
	Source string `json:"source" yaml:"source"`

	Record  FilingRecord `json:"record" yaml:"record"`
	Summary string       `json:"summary" yaml:"summary"`
}
