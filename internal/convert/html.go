// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLConverter reads paragraphs from an HTML filing, such as the primary
// document EDGAR serves for a Form D. Block elements and table cells end a
// paragraph; checked form inputs are rendered as ☒.
type HTMLConverter struct{}

// Convert implements Converter.
func (HTMLConverter) Convert(_ context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening html %s: %w", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing html %s: %w", path, err)
	}
	return htmlParagraphs(doc), nil
}

// blockAtoms end the current paragraph when entered or left.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Blockquote: true, atom.Pre: true, atom.Caption: true, atom.Title: true,
}

// skipAtoms are never rendered.
var skipAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// htmlParagraphs walks the parsed tree and collects text between block
// boundaries.
func htmlParagraphs(root *html.Node) []string {
	var (
		paras []string
		buf   strings.Builder
	)
	flush := func() {
		if s := strings.Join(strings.Fields(buf.String()), " "); s != "" {
			paras = append(paras, s)
		}
		buf.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipAtoms[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Input && isCheckbox(n) {
				if hasAttr(n, "checked") {
					buf.WriteString(glyphChecked + " ")
				} else {
					buf.WriteString(glyphUnchecked + " ")
				}
			}
		}

		block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(root)
	flush()
	return paras
}

func isCheckbox(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "type" {
			t := strings.ToLower(a.Val)
			return t == "checkbox" || t == "radio"
		}
	}
	return false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
