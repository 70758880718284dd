// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary renders a FilingRecord as a one-sentence comment.
package summary

import (
	"fmt"
	"strings"

	"github.com/pdiddy/formd/pkg/types"
)

// Generate substitutes the record's values into the fixed comment template.
// Unresolved fields appear as the "Not found" sentinel, verbatim.
func Generate(rec types.FilingRecord) string {
	return fmt.Sprintf(
		"%s has filed a Form D indicating a %s deal. "+
			"The offering amount is %s, of which %s has been sold. "+
			"Proceeds are expected %s.",
		rec.Get(types.FieldIssuer),
		strings.ToLower(rec.DealType.Label()),
		rec.Get(types.FieldTotalOffering),
		rec.Get(types.FieldAmountSold),
		rec.Get(types.FieldUseOfProceeds),
	)
}
