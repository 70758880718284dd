// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/formd/internal/httputil"
	"github.com/pdiddy/formd/pkg/types"
)

const fakeFormD = "<html><body><p>CIK (Filer ID Number)</p><p>0001234567</p></body></html>"

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// newTestServer serves fake filing documents based on URL path and records
// the User-Agent of the last request.
func newTestServer(t *testing.T, userAgent *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userAgent != nil {
			userAgent.Store(r.Header.Get("User-Agent"))
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/xslFormDX01/primary_doc.xml"):
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, fakeFormD)
		case strings.HasPrefix(r.URL.Path, "/files/"):
			w.Header().Set("Content-Type", "application/octet-stream")
			fmt.Fprint(w, "file body")
		default:
			http.NotFound(w, r)
		}
	}))
}

func overrideArchivesBase(tsURL string) func() {
	orig := edgarArchivesBase
	edgarArchivesBase = tsURL + "/Archives/edgar/data/"
	return func() { edgarArchivesBase = orig }
}

func testConfig(dir string) types.AcquisitionConfig {
	return types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "formd-test admin@example.com",
		},
		FilingsDir: dir,
	}
}

func TestAcquireAccession(t *testing.T) {
	var ua atomic.Value
	ts := newTestServer(t, &ua)
	defer ts.Close()
	defer overrideArchivesBase(ts.URL)()

	dir := t.TempDir()
	var buf bytes.Buffer

	a, skipped, err := Acquire(context.Background(), ts.Client(), "0001234567-24-000123", testConfig(dir), &buf)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if a.ID != "0001234567-24-000123" || a.Kind != "accession" {
		t.Errorf("acquisition = %+v", a)
	}

	wantPath := filepath.Join(dir, "raw", "0001234567-24-000123.html")
	if a.Path != wantPath {
		t.Errorf("Path = %q, want %q", a.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != fakeFormD {
		t.Errorf("content = %q", data)
	}
	if got := ua.Load(); got != "formd-test admin@example.com" {
		t.Errorf("User-Agent = %v", got)
	}

	meta, err := ReadMetadata(filepath.Join(dir, "metadata", "0001234567-24-000123.yaml"))
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if !strings.HasSuffix(meta.SourceURL, "/1234567/000123456724000123/xslFormDX01/primary_doc.xml") {
		t.Errorf("SourceURL = %q", meta.SourceURL)
	}
	if !strings.Contains(buf.String(), "downloading:") {
		t.Error("output should contain 'downloading:'")
	}
}

func TestAcquireURLKeepsExtension(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	dir := t.TempDir()
	a, _, err := Acquire(context.Background(), ts.Client(), ts.URL+"/files/acme.docx", testConfig(dir), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if want := filepath.Join(dir, "raw", "acme.docx"); a.Path != want {
		t.Errorf("Path = %q, want %q", a.Path, want)
	}
}

func TestAcquireSkipExisting(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "body")
	}))
	defer ts.Close()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "raw"), 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(dir, "raw", "acme.txt")
	if err := os.WriteFile(existing, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	a, skipped, err := Acquire(context.Background(), ts.Client(), ts.URL+"/acme.txt", testConfig(dir), &buf)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !skipped {
		t.Error("expected skipped")
	}
	if a.Path != existing {
		t.Errorf("Path = %q, want %q", a.Path, existing)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("server hit %d times, want 0", hits)
	}
	if !strings.Contains(buf.String(), "skipped:") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAcquireRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "Name of Issuer\nAcme Corp\n")
	}))
	defer ts.Close()

	dir := t.TempDir()
	_, _, err := Acquire(context.Background(), ts.Client(), ts.URL+"/acme.txt", testConfig(dir), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestAcquireHTTPError(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	dir := t.TempDir()
	_, _, err := Acquire(context.Background(), ts.Client(), ts.URL+"/missing.htm", testConfig(dir), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("err = %v, want HTTP 404", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "raw", "*"))
	if len(matches) != 0 {
		t.Errorf("raw/ should be empty after a failed download, got %v", matches)
	}
}

func TestAcquireUnknownIdentifier(t *testing.T) {
	_, _, err := Acquire(context.Background(), http.DefaultClient, "not-an-id", testConfig(t.TempDir()), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unrecognized identifier") {
		t.Fatalf("err = %v", err)
	}
}

func TestAcquireBatch(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()
	defer overrideArchivesBase(ts.URL)()

	dir := t.TempDir()
	ids := []string{
		"0001234567-24-000123",
		ts.URL + "/files/acme.docx",
		"bogus",
		"0001234567-24-000123",
	}

	var buf bytes.Buffer
	result := AcquireBatch(context.Background(), ts.Client(), ids, testConfig(dir), &buf)

	if result.Downloaded != 2 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Total() != 4 || !result.HasFailures() {
		t.Errorf("Total = %d, HasFailures = %v", result.Total(), result.HasFailures())
	}
	if len(result.Acquisitions) != 3 {
		t.Errorf("len(Acquisitions) = %d, want 3", len(result.Acquisitions))
	}
	if !strings.Contains(buf.String(), "Batch summary: 2 downloaded, 1 skipped, 1 failed (total: 4)") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAcquireBatchCancelledDuringDelay(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	cfg := testConfig(t.TempDir())
	cfg.DownloadDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids := []string{ts.URL + "/files/a.txt", ts.URL + "/files/b.txt"}
	var buf bytes.Buffer
	result := AcquireBatch(ctx, ts.Client(), ids, cfg, &buf)
	if result.Downloaded != 0 {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(buf.String(), "cancelled") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteAndReadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	in := &types.Acquisition{
		ID:         "acme",
		Identifier: "https://example.com/acme.docx",
		Kind:       "url",
		SourceURL:  "https://example.com/acme.docx",
		Path:       "filings/raw/acme.docx",
		AcquiredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := WriteMetadata(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	if !out.AcquiredAt.Equal(in.AcquiredAt) {
		t.Errorf("AcquiredAt = %v, want %v", out.AcquiredAt, in.AcquiredAt)
	}
	out.AcquiredAt = in.AcquiredAt
	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
