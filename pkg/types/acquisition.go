// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Acquisition records where a raw filing document came from. It is written
// to metadata/<id>.yaml next to the download in raw/.
type Acquisition struct {
	// ID is the filename stem shared by the raw document, its metadata and
	// its extraction result.
	ID string `json:"id" yaml:"id"`

	// Identifier is the argument the document was acquired from: a URL or
	// an EDGAR accession number.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Kind is "url" or "accession".
	Kind string `json:"kind" yaml:"kind"`

	SourceURL   string    `json:"source_url" yaml:"source_url"`
	Path        string    `json:"path" yaml:"path"`
	ContentType string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	AcquiredAt  time.Time `json:"acquired_at" yaml:"acquired_at"`
}
