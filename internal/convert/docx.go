// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// Glyphs written for Word checkbox states so the extractors can tell a
// ticked box from a bare label.
const (
	glyphChecked   = "☒"
	glyphUnchecked = "☐"
)

// wingdingsChecked and wingdingsUnchecked are the w:sym codes Word uses for
// box glyphs in the Wingdings fonts.
var (
	wingdingsChecked   = map[string]bool{"F0FE": true, "F078": true, "F0FD": true, "F053": true}
	wingdingsUnchecked = map[string]bool{"F0A8": true, "F06F": true, "F071": true}
)

// DocxConverter reads paragraphs from a Word document. Each w:p element
// becomes one paragraph, including those inside table cells. Tabs and
// breaks are preserved as whitespace; checkbox form fields and symbol
// glyphs are rendered as ☒ or ☐.
type DocxConverter struct{}

// Convert implements Converter.
func (DocxConverter) Convert(_ context.Context, path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in %s: %w", docxBody, path, err)
		}
		defer rc.Close()
		paras, err := docxParagraphs(rc)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return paras, nil
	}
	return nil, fmt.Errorf("%s: missing %s (not a Word document?)", path, docxBody)
}

// docxParagraphs streams WordprocessingML and collects paragraph text.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		buf    strings.Builder
		inPara bool
		inText bool

		// Legacy checkbox form field state. checked overrides default.
		inCheckBox bool
		boxDefault bool
		boxChecked *bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				buf.Reset()
			case "t":
				inText = true
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				buf.WriteByte('\n')
			case "sym":
				code := strings.ToUpper(attr(t, "char"))
				switch {
				case wingdingsChecked[code]:
					buf.WriteString(glyphChecked + " ")
				case wingdingsUnchecked[code]:
					buf.WriteString(glyphUnchecked + " ")
				}
			case "checkBox":
				inCheckBox = true
				boxDefault, boxChecked = false, nil
			case "default":
				if inCheckBox {
					boxDefault = onOff(attr(t, "val"))
				}
			case "checked":
				on := onOff(attr(t, "val"))
				switch {
				case inCheckBox:
					boxChecked = &on
				case on:
					buf.WriteString(glyphChecked + " ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "checkBox":
				if (boxChecked != nil && *boxChecked) || (boxChecked == nil && boxDefault) {
					buf.WriteString(glyphChecked + " ")
				}
				inCheckBox = false
				boxDefault, boxChecked = false, nil
			case "p":
				if inPara {
					paras = append(paras, buf.String())
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return paras, nil
}

// onOff reads a WordprocessingML on/off value; an absent val means on.
func onOff(v string) bool {
	return v == "" || v == "1" || v == "true" || v == "on"
}

// attr returns the value of the attribute with the given local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
