// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FilingHit is one filing returned by an EDGAR full-text search.
type FilingHit struct {
	// Accession is the EDGAR accession number (0001234567-24-000123). It is
	// accepted directly by the acquire stage.
	Accession string `json:"accession" yaml:"accession"`

	// CIK is the filer's Central Index Key as returned by EDGAR.
	CIK string `json:"cik" yaml:"cik"`

	// Issuer is the filer display name without the CIK suffix.
	Issuer string `json:"issuer" yaml:"issuer"`

	// Form is the form type, "D" or "D/A".
	Form string `json:"form" yaml:"form"`

	FileDate time.Time `json:"file_date" yaml:"file_date"`

	// Location is the first business location, when EDGAR reports one.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}
