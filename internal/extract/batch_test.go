// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/pkg/types"
)

// failingConverter rejects every file whose name contains "bad".
type failingConverter struct {
	next convert.Converter
}

func (f failingConverter) Convert(ctx context.Context, path string) ([]string, error) {
	if strings.Contains(filepath.Base(path), "bad") {
		return nil, errors.New("corrupt document")
	}
	return f.next.Convert(ctx, path)
}

func writeRaw(t *testing.T, filingsDir, name string, lines []string) string {
	t.Helper()
	dir := filepath.Join(filingsDir, rawDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRaw(t, dir, "acme.txt", sampleFiling)

	core, logs := observer.New(zap.DebugLevel)
	p := NewPipeline(convert.TextConverter{}, defaultExtractor(t), zap.New(core))

	filing, err := p.ExtractFile(context.Background(), path)
	require.NoError(t, err)

	assert.Len(t, filing.ID, 12)
	assert.Equal(t, path, filing.Source)
	assert.Equal(t, "0001234567", filing.Record.Get(types.FieldCIK).String())
	assert.True(t, filing.Record.Valid)
	assert.Contains(t, filing.Summary, "Acme Robotics, Inc. has filed a Form D indicating a new deal.")

	assert.Equal(t, len(types.Fields), logs.FilterMessage("field resolved").Len())
	assert.Equal(t, 1, logs.FilterMessage("record resolved").Len())
}

func TestExtractFile_ConversionError(t *testing.T) {
	p := NewPipeline(convert.TextConverter{}, defaultExtractor(t), nil)
	_, err := p.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "acme.txt", sampleFiling)
	writeRaw(t, dir, "bad.txt", []string{"garbage"})
	writeRaw(t, dir, "notes.md", []string{"ignored"})

	p := NewPipeline(failingConverter{next: convert.TextConverter{}}, defaultExtractor(t), nil)
	cfg := types.ExtractionConfig{FilingsDir: dir}

	var out strings.Builder
	sum, err := p.ExtractAll(context.Background(), cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Extracted: 1, Failed: 1}, sum)
	assert.True(t, sum.HasFailures())
	assert.Contains(t, out.String(), "extracted acme.txt")
	assert.Contains(t, out.String(), "failed  bad.txt")
	assert.NotContains(t, out.String(), "notes.md")

	got, err := ReadResult(ResultPath(dir, "acme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "$5,000,000", got.Record.Get(types.FieldTotalOffering).String())
	assert.True(t, got.Record.Valid)
	assert.Equal(t, types.DealNew, got.Record.DealType)
}

func TestExtractAll_SkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	src := writeRaw(t, dir, "acme.txt", sampleFiling)

	p := NewPipeline(convert.TextConverter{}, defaultExtractor(t), nil)
	cfg := types.ExtractionConfig{FilingsDir: dir}

	_, err := p.ExtractAll(context.Background(), cfg, &strings.Builder{})
	require.NoError(t, err)

	// Make the source older than its result.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))

	var out strings.Builder
	sum, err := p.ExtractAll(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Skipped: 1}, sum)
	assert.Contains(t, out.String(), "skipped acme.txt")

	cfg.Force = true
	sum, err = p.ExtractAll(context.Background(), cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Extracted: 1}, sum)
}

func withCIK(cik string) []string {
	lines := append([]string(nil), sampleFiling...)
	for i, l := range lines {
		if l == "0001234567" {
			lines[i] = cik
		}
	}
	return lines
}

func TestExtractAll_SameStemDifferentExtensions(t *testing.T) {
	dir := t.TempDir()
	htm := writeRaw(t, dir, "acme.htm", withCIK("0001111111"))
	txt := writeRaw(t, dir, "acme.txt", withCIK("0002222222"))

	p := NewPipeline(convert.TextConverter{}, defaultExtractor(t), nil)
	cfg := types.ExtractionConfig{FilingsDir: dir}

	var out strings.Builder
	sum, err := p.ExtractAll(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Extracted: 2}, sum)
	assert.NotContains(t, out.String(), "skipped")

	for src, cik := range map[string]string{htm: "0001111111", txt: "0002222222"} {
		got, err := ReadResult(ResultPath(dir, src))
		require.NoError(t, err, src)
		assert.Equal(t, src, got.Source)
		assert.Equal(t, cik, got.Record.Get(types.FieldCIK).String())
	}

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(htm, past, past))
	require.NoError(t, os.Chtimes(txt, past, past))
	sum, err = p.ExtractAll(context.Background(), cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Skipped: 2}, sum)
}

func TestExtractAll_MissingRawDir(t *testing.T) {
	p := NewPipeline(convert.TextConverter{}, defaultExtractor(t), nil)
	_, err := p.ExtractAll(context.Background(), types.ExtractionConfig{FilingsDir: t.TempDir()}, &strings.Builder{})
	assert.ErrorContains(t, err, "reading raw directory")
}

func TestBatchSummary(t *testing.T) {
	s := BatchSummary{Extracted: 3, Skipped: 2, Failed: 1}
	assert.Equal(t, 6, s.Total())
	assert.True(t, s.HasFailures())
	assert.False(t, BatchSummary{Extracted: 5}.HasFailures())
}

func TestResultPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("filings", "extracted", "acme-2024.docx.yaml"),
		ResultPath("filings", "/tmp/in/acme-2024.docx"))
	assert.NotEqual(t,
		ResultPath("filings", "raw/acme.htm"),
		ResultPath("filings", "raw/acme.txt"))
}
