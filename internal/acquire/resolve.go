// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/pdiddy/formd/internal/convert"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeURL
	TypeAccession
)

func (t IdentifierType) String() string {
	switch t {
	case TypeURL:
		return "url"
	case TypeAccession:
		return "accession"
	default:
		return "unknown"
	}
}

// edgarArchivesBase is the EDGAR archive root. Declared as a var so tests
// can substitute an httptest server.
var edgarArchivesBase = "https://www.sec.gov/Archives/edgar/data/"

// accessionPattern matches EDGAR accession numbers: "0001234567-24-000123".
// The first group is the filer CIK.
var accessionPattern = regexp.MustCompile(`^(\d{10})-(\d{2})-(\d{6})$`)

// Classify determines the identifier type and returns the normalized form.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if accessionPattern.MatchString(identifier) {
		return TypeAccession, identifier
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return TypeURL, identifier
	}

	return TypeUnknown, identifier
}

// Slug returns a filesystem-safe filename stem for the identifier.
func Slug(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeAccession:
		return normalized
	case TypeURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return urlHashSlug(normalized)
		}
		base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return urlHashSlug(normalized)
		}
		return base
	default:
		return "unknown"
	}
}

// DocumentURL returns the download URL for the identifier. An accession
// number resolves to the rendered HTML view of its Form D primary document.
func DocumentURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeURL:
		return normalized
	case TypeAccession:
		m := accessionPattern.FindStringSubmatch(normalized)
		cik := strings.TrimLeft(m[1], "0")
		folder := m[1] + m[2] + m[3]
		return edgarArchivesBase + cik + "/" + folder + "/xslFormDX01/primary_doc.xml"
	default:
		return ""
	}
}

// extensionFor picks the file extension for a download: the URL path's own
// extension when it is convertible, else one derived from the content type,
// else .html.
func extensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); convert.Supported("x" + ext) {
			return ext
		}
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/plain":
		return ".txt"
	default:
		return ".html"
	}
}

func urlHashSlug(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("url-%x", h[:8])
}
