// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/formd/pkg/types"
)

func record(deal types.DealType, values map[types.FieldName]string) types.FilingRecord {
	rec := types.FilingRecord{DealType: deal}
	for _, name := range types.Fields {
		f := types.NotFound(name)
		if v, ok := values[name]; ok {
			f = types.ExtractedField{Field: name, Value: types.Found(v), Line: 0, Strategy: types.StrategyOffset}
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		rec  types.FilingRecord
		want string
	}{
		{
			name: "all fields resolved",
			rec: record(types.DealNew, map[types.FieldName]string{
				types.FieldIssuer:        "Acme Corp",
				types.FieldTotalOffering: "$1,000,000",
				types.FieldAmountSold:    "$500,000",
				types.FieldUseOfProceeds: "to fund operations",
			}),
			want: "Acme Corp has filed a Form D indicating a new deal. " +
				"The offering amount is $1,000,000, of which $500,000 has been sold. " +
				"Proceeds are expected to fund operations.",
		},
		{
			name: "tranche deal",
			rec: record(types.DealTranche, map[types.FieldName]string{
				types.FieldIssuer:        "Acme Corp",
				types.FieldTotalOffering: "$2,000,000",
				types.FieldAmountSold:    "$2,000,000",
				types.FieldUseOfProceeds: "to repay debt",
			}),
			want: "Acme Corp has filed a Form D indicating a tranche deal. " +
				"The offering amount is $2,000,000, of which $2,000,000 has been sold. " +
				"Proceeds are expected to repay debt.",
		},
		{
			name: "sentinel substituted verbatim",
			rec:  record(types.DealNew, nil),
			want: "Not found has filed a Form D indicating a new deal. " +
				"The offering amount is Not found, of which Not found has been sold. " +
				"Proceeds are expected Not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.rec))
		})
	}
}
