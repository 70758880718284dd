// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. EDGAR
	// rejects anonymous clients, so this should name a contact
	// (e.g. "Example Corp admin@example.com").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AcquisitionConfig holds settings for the acquire stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"delay" yaml:"delay"`

	// FilingsDir is the base directory for filings (contains raw/, metadata/).
	// It is set from the top-level filings_dir setting.
	FilingsDir string `json:"-" yaml:"-"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps the number of distinct filings returned (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Amendments includes D/A filings alongside original Form D filings.
	Amendments bool `json:"amendments" yaml:"amendments"`
}

// PDFBackend selects how .pdf filings are turned into text.
type PDFBackend string

const (
	PDFMarkitdown PDFBackend = "markitdown"
	PDFDisabled   PDFBackend = "none"
)

// ConversionConfig holds settings for turning input files into paragraphs.
type ConversionConfig struct {
	// PDFBackend selects the PDF converter: markitdown or none.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`
}

// ExtractionConfig holds settings for the extract stage.
type ExtractionConfig struct {
	Conversion ConversionConfig `json:"convert" yaml:"convert"`

	// FilingsDir is the base directory for filings (contains raw/, extracted/).
	FilingsDir string `json:"filings_dir" yaml:"filings_dir"`

	// SpecsFile optionally replaces the built-in field specs with a YAML file.
	SpecsFile string `json:"specs_file,omitempty" yaml:"specs_file,omitempty"`

	// DealKeyword marks a tranche deal when present in the document (default "Tranche").
	DealKeyword string `json:"deal_keyword" yaml:"deal_keyword"`

	// Force re-extracts sources whose result file is newer than the source.
	// It is a per-run flag, never read from formd.yaml.
	Force bool `json:"force" yaml:"-"`
}

// StoreConfig holds settings for the filing store.
type StoreConfig struct {
	// FilingsDir is the base directory for filings (contains index/).
	// It is set from the top-level filings_dir setting.
	FilingsDir string `json:"-" yaml:"-"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LoggingConfig selects the logger level and encoding.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format"`
}

// Config groups all stage configurations in the layout of formd.yaml.
// Extraction settings sit at the top level, so ExtractionConfig is inlined
// and its filings_dir doubles as the global one.
type Config struct {
	Extraction  ExtractionConfig  `json:"extraction" yaml:",inline"`
	Log         LoggingConfig     `json:"log" yaml:"log"`
	Search      SearchConfig      `json:"search" yaml:"search"`
	Acquisition AcquisitionConfig `json:"acquire" yaml:"acquire"`
	Store       StoreConfig       `json:"store" yaml:"store"`
}
