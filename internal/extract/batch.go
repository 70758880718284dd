// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/normalize"
	"github.com/pdiddy/formd/internal/summary"
	"github.com/pdiddy/formd/pkg/types"
)

const (
	rawDir       = "raw"
	extractedDir = "extracted"
)

// Pipeline converts a document, normalizes it and resolves its record.
type Pipeline struct {
	conv convert.Converter
	ext  *Extractor
	log  *zap.Logger
}

// NewPipeline wires a converter to an extractor. A nil logger is replaced
// with a no-op logger.
func NewPipeline(conv convert.Converter, ext *Extractor, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{conv: conv, ext: ext, log: log}
}

// ExtractFile runs the whole chain for one document. Conversion errors are
// returned; field-level misses never are.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (*types.Filing, error) {
	paras, err := p.conv.Convert(ctx, path)
	if err != nil {
		return nil, err
	}
	doc := normalize.Normalize(paras)
	rec := p.ext.Resolve(doc)

	id := DocumentID(doc)
	for _, f := range rec.Fields {
		p.log.Debug("field resolved",
			zap.String("filing", id),
			zap.String("field", string(f.Field)),
			zap.Bool("found", f.Value.Found),
			zap.String("value", f.Value.Text),
			zap.Int("line", f.Line),
			zap.String("strategy", string(f.Strategy)),
		)
	}
	p.log.Debug("record resolved",
		zap.String("filing", id),
		zap.String("source", path),
		zap.Int("lines", doc.Len()),
		zap.Bool("valid", rec.Valid),
		zap.String("deal_type", string(rec.DealType)),
	)

	return &types.Filing{
		ID:      id,
		Source:  path,
		Record:  rec,
		Summary: summary.Generate(rec),
	}, nil
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ResultPath returns where the extraction result for source is written:
// filingsDir/extracted/<file>.yaml. The source extension stays in the name
// so acme.htm and acme.txt keep separate results.
func ResultPath(filingsDir, source string) string {
	return filepath.Join(filingsDir, extractedDir, filepath.Base(source)+".yaml")
}

// ExtractAll processes every supported document in filingsDir/raw/ and
// writes one result per document to filingsDir/extracted/. Documents whose
// result is newer than the source are skipped unless cfg.Force is set.
// Per-document failures are counted, not returned.
func (p *Pipeline) ExtractAll(ctx context.Context, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	inDir := filepath.Join(cfg.FilingsDir, rawDir)
	outDir := filepath.Join(cfg.FilingsDir, extractedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading raw directory %s: %w", inDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var sum BatchSummary
	for _, entry := range entries {
		if entry.IsDir() || !convert.Supported(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		src := filepath.Join(inDir, entry.Name())
		outPath := ResultPath(cfg.FilingsDir, src)

		if !cfg.Force {
			changed, err := hasChanged(src, outPath)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
				sum.Failed++
				continue
			}
			if !changed {
				fmt.Fprintf(w, "skipped %s\n", entry.Name())
				sum.Skipped++
				continue
			}
		}

		filing, err := p.ExtractFile(ctx, src)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			p.log.Warn("extraction failed", zap.String("source", src), zap.Error(err))
			sum.Failed++
			continue
		}
		if err := WriteResult(outPath, filing); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", entry.Name(), err)
			sum.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%s, valid: %s)\n",
			entry.Name(), filing.ID, filing.Record.ValidLabel())
		sum.Extracted++
	}
	return sum, nil
}

// hasChanged reports whether the source is newer than the output file.
// Returns true if the output does not exist.
func hasChanged(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", srcPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}

// WriteResult marshals filing to a YAML file, creating parent directories.
func WriteResult(path string, filing *types.Filing) error {
	data, err := yaml.Marshal(filing)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads a Filing previously written by WriteResult.
func ReadResult(path string) (*types.Filing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	var f types.Filing
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &f, nil
}
