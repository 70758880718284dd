// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads filing documents into the filings directory and
// records where each one came from.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/httputil"
	"github.com/pdiddy/formd/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Downloaded   int
	Skipped      int
	Failed       int
	Acquisitions []*types.Acquisition
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any identifier failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// NewClient returns an HTTP client honouring cfg.Timeout.
func NewClient(cfg types.AcquisitionConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Acquire downloads one filing document into filings/raw/ and writes its
// metadata. If a document with the same stem already exists it skips the
// download. The skipped return value reports that case.
func Acquire(ctx context.Context, client *http.Client, identifier string, cfg types.AcquisitionConfig, w io.Writer) (acq *types.Acquisition, skipped bool, err error) {
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return nil, false, fmt.Errorf("unrecognized identifier format: %q (want a URL or an accession number)", identifier)
	}

	slug := Slug(idType, normalized)
	metaPath := filepath.Join(cfg.FilingsDir, metadataDir, slug+".yaml")

	if existing := existingRaw(cfg.FilingsDir, slug); existing != "" {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		a, readErr := ReadMetadata(metaPath)
		if readErr != nil {
			a = &types.Acquisition{ID: slug, Identifier: identifier, Kind: idType.String(), Path: existing}
		}
		return a, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.FilingsDir, rawDir),
		filepath.Join(cfg.FilingsDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	docURL := DocumentURL(idType, normalized)
	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, idType)

	destPath, contentType, err := downloadFile(ctx, client, docURL, filepath.Join(cfg.FilingsDir, rawDir, slug), cfg)
	if err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	a := &types.Acquisition{
		ID:          slug,
		Identifier:  identifier,
		Kind:        idType.String(),
		SourceURL:   docURL,
		Path:        destPath,
		ContentType: contentType,
		AcquiredAt:  time.Now().UTC(),
	}
	if err := WriteMetadata(a, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return a, false, nil
}

// AcquireBatch processes multiple identifiers, printing per-item status and
// returning a summary. It continues after individual failures and waits
// cfg.DownloadDelay between consecutive downloads.
func AcquireBatch(ctx context.Context, client *http.Client, identifiers []string, cfg types.AcquisitionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, id := range identifiers {
		if i > 0 && cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "cancelled: %v\n", ctx.Err())
				return result
			case <-time.After(cfg.DownloadDelay):
			}
		}
		a, wasSkipped, err := Acquire(ctx, client, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Acquisitions = append(result.Acquisitions, a)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// existingRaw returns the path of a previously downloaded document for
// slug, or "" when none exists.
func existingRaw(filingsDir, slug string) string {
	matches, _ := filepath.Glob(filepath.Join(filingsDir, rawDir, slug+".*"))
	for _, m := range matches {
		if convert.Supported(m) {
			return m
		}
	}
	return ""
}

// downloadFile fetches url to destStem plus an extension chosen from the
// URL or content type, writing through a temporary file. It sets the
// declared User-Agent EDGAR requires and retries on rate limiting.
func downloadFile(ctx context.Context, client *http.Client, url, destStem string, cfg types.AcquisitionConfig) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	destPath := destStem + extensionFor(url, contentType)

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, contentType, nil
}

// WriteMetadata writes an Acquisition record to a YAML file.
func WriteMetadata(a *types.Acquisition, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads an Acquisition record from a YAML file.
func ReadMetadata(path string) (*types.Acquisition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a types.Acquisition
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
