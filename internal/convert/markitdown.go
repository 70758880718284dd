// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/formd/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts PDFs by piping them through the markitdown
// container image and flattening the Markdown it returns into paragraphs.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter creates a converter that uses the given container
// runtime to run the markitdown image. It verifies that the markitdown image
// exists locally before returning.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert implements Converter.
func (m *MarkitdownConverter) Convert(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with markitdown: %w", path, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("markitdown produced empty output for %s", path)
	}
	return markdownParagraphs(out.String()), nil
}

var (
	mdHeading   = regexp.MustCompile(`^#{1,6}\s+`)
	mdBullet    = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	mdEmphasis  = regexp.MustCompile(`\*\*|__|` + "`")
	mdTableRule = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
)

// markdownParagraphs strips Markdown decoration. Each table cell becomes its
// own paragraph so label and value cells keep their relative order.
func markdownParagraphs(md string) []string {
	var paras []string
	sc := bufio.NewScanner(strings.NewReader(md))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || mdTableRule.MatchString(line) {
			continue
		}
		line = mdHeading.ReplaceAllString(line, "")
		line = mdBullet.ReplaceAllString(line, "")
		line = mdEmphasis.ReplaceAllString(line, "")

		if strings.HasPrefix(line, "|") {
			for _, cell := range strings.Split(strings.Trim(line, "|"), "|") {
				if cell = strings.TrimSpace(cell); cell != "" {
					paras = append(paras, cell)
				}
			}
			continue
		}
		paras = append(paras, line)
	}
	return paras
}
