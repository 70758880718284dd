// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pdiddy/formd/internal/acquire"
	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/extract"
	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/pkg/types"
)

// loadSpecs returns the specs from cfg.SpecsFile, or the built-in specs.
func loadSpecs(cfg types.ExtractionConfig) ([]extract.FieldSpec, error) {
	if cfg.SpecsFile == "" {
		return extract.DefaultSpecs(), nil
	}
	return extract.LoadSpecs(cfg.SpecsFile)
}

// newPipeline builds the converter set and compiled extractor for cfg.
func newPipeline(cfg types.ExtractionConfig) (*extract.Pipeline, error) {
	specs, err := loadSpecs(cfg)
	if err != nil {
		return nil, err
	}
	ext, err := extract.New(specs, extract.Options{DealKeyword: cfg.DealKeyword})
	if err != nil {
		return nil, err
	}
	return extract.NewPipeline(convert.NewSet(cfg.Conversion), ext, logger), nil
}

// sourceURLFor returns the URL a raw document was acquired from, or "".
func sourceURLFor(filingsDir, path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a, err := acquire.ReadMetadata(filepath.Join(filingsDir, "metadata", stem+".yaml"))
	if err != nil {
		return ""
	}
	return a.SourceURL
}

// processFile extracts one document, writes its result file and, when st
// is non-nil, indexes it.
func processFile(ctx context.Context, p *extract.Pipeline, st *store.Store, filingsDir, path string) (*types.Filing, error) {
	filing, err := p.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := extract.WriteResult(extract.ResultPath(filingsDir, path), filing); err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Save(ctx, filing, sourceURLFor(filingsDir, path)); err != nil {
			return nil, err
		}
	}
	return filing, nil
}
