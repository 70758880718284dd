// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns filing documents into ordered paragraph text.
// Backends exist for Word (.docx), HTML, plain text and, through the
// markitdown container, PDF. Converters only read files; they never
// interpret the content.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/formd/internal/container"
	"github.com/pdiddy/formd/pkg/types"
)

// Converter reads a document and returns its paragraphs in reading order.
type Converter interface {
	Convert(ctx context.Context, path string) ([]string, error)
}

// supportedExts lists the extensions Set can dispatch, in display order.
var supportedExts = []string{".docx", ".htm", ".html", ".pdf", ".txt"}

// Supported reports whether path has an extension a Set can convert.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range supportedExts {
		if e == ext {
			return true
		}
	}
	return false
}

// Set dispatches to a backend by file extension.
type Set struct {
	docx Converter
	html Converter
	text Converter
	pdf  Converter
}

// NewSet builds the converter set for cfg. The PDF backend is only wired
// when cfg selects markitdown and a container runtime with the image is
// available; otherwise .pdf inputs fail with a descriptive error.
func NewSet(cfg types.ConversionConfig) *Set {
	s := &Set{
		docx: DocxConverter{},
		html: HTMLConverter{},
		text: TextConverter{},
	}
	if cfg.PDFBackend == types.PDFDisabled {
		s.pdf = unavailable{reason: errPDFDisabled}
		return s
	}
	rt, err := container.DetectRuntime()
	if err != nil {
		s.pdf = unavailable{reason: err}
		return s
	}
	md, err := NewMarkitdownConverter(rt)
	if err != nil {
		s.pdf = unavailable{reason: err}
		return s
	}
	s.pdf = md
	return s
}

// Convert implements Converter by dispatching on the extension of path.
func (s *Set) Convert(ctx context.Context, path string) ([]string, error) {
	var c Converter
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		c = s.docx
	case ".htm", ".html":
		c = s.html
	case ".txt":
		c = s.text
	case ".pdf":
		c = s.pdf
	}
	if c == nil {
		return nil, fmt.Errorf("unsupported document type %q (supported: %s)",
			filepath.Ext(path), strings.Join(supportedExts, ", "))
	}
	return c.Convert(ctx, path)
}

var errPDFDisabled = errors.New("disabled by configuration (pdf_backend: none)")

// unavailable is the PDF backend when no container runtime can serve it.
type unavailable struct {
	reason error
}

func (u unavailable) Convert(_ context.Context, path string) ([]string, error) {
	return nil, fmt.Errorf("cannot convert %s: PDF backend unavailable: %w", path, u.reason)
}

// Expand resolves input arguments to a sorted, de-duplicated list of
// supported files. Arguments containing glob metacharacters are matched with
// doublestar ("filings/**/*.docx"); plain paths are kept as given.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(filepath.FromSlash(base)), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		for _, m := range matches {
			p := filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
			if Supported(p) {
				add(p)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
