// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/pdiddy/formd/pkg/types"
)

const defaultDealKeyword = "Tranche"

// Resolve runs every spec against doc and assembles the FilingRecord. A
// field that finds nothing never stops the others; fields with no spec
// resolve to not found. Validity and deal type are derived from the
// extracted values and the document text only.
func (e *Extractor) Resolve(doc types.Document) types.FilingRecord {
	byField := make(map[types.FieldName]types.ExtractedField, len(e.compiled))
	for _, cs := range e.compiled {
		byField[cs.field] = cs.run(doc)
	}

	rec := types.FilingRecord{
		Fields: make([]types.ExtractedField, 0, len(types.Fields)),
	}
	for _, name := range types.Fields {
		f, ok := byField[name]
		if !ok {
			f = types.NotFound(name)
		}
		rec.Fields = append(rec.Fields, f)
	}

	rec.Valid = IsValid(rec)
	rec.DealType = ClassifyDeal(doc, e.dealKeyword)
	return rec
}

// IsValid reports whether the identifier and the total offering both
// resolved. It is a completeness check, not a semantic validation.
func IsValid(rec types.FilingRecord) bool {
	return rec.Get(types.FieldCIK).Found && rec.Get(types.FieldTotalOffering).Found
}

// ClassifyDeal returns DealTranche when keyword occurs anywhere in the
// document text (case-sensitive), DealNew otherwise.
func ClassifyDeal(doc types.Document, keyword string) types.DealType {
	if keyword == "" {
		keyword = defaultDealKeyword
	}
	if strings.Contains(doc.Text(), keyword) {
		return types.DealTranche
	}
	return types.DealNew
}

// DocumentID derives a stable identifier from the normalized line sequence:
// the first 12 hex characters of its SHA-256.
func DocumentID(doc types.Document) string {
	h := sha256.New()
	for _, line := range doc.Lines() {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
