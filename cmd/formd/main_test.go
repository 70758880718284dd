// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formd/internal/acquire"
	"github.com/pdiddy/formd/internal/convert"
	"github.com/pdiddy/formd/internal/export"
	"github.com/pdiddy/formd/internal/extract"
	"github.com/pdiddy/formd/internal/store"
	"github.com/pdiddy/formd/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestSettingPrecedence(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("filings-dir", "filings", "")
	cmd.Flags().Int("max-results", 20, "")
	cmd.Flags().Duration("timeout", time.Minute, "")
	cmd.Flags().Bool("amendments", false, "")

	// Flag defaults when nothing is configured.
	assert.Equal(t, "filings", settingString(cmd, "filings-dir", "filings_dir"))
	assert.Equal(t, 20, settingInt(cmd, "max-results", "store.max_results"))
	assert.Equal(t, time.Minute, settingDuration(cmd, "timeout", "acquire.timeout"))
	assert.False(t, settingBool(cmd, "amendments", "search.amendments"))

	// Configured keys override defaults.
	viper.Set("filings_dir", "/srv/filings")
	viper.Set("store.max_results", 50)
	viper.Set("acquire.timeout", "90s")
	viper.Set("search.amendments", true)
	assert.Equal(t, "/srv/filings", settingString(cmd, "filings-dir", "filings_dir"))
	assert.Equal(t, 50, settingInt(cmd, "max-results", "store.max_results"))
	assert.Equal(t, 90*time.Second, settingDuration(cmd, "timeout", "acquire.timeout"))
	assert.True(t, settingBool(cmd, "amendments", "search.amendments"))

	// Explicit flags override configuration.
	require.NoError(t, cmd.Flags().Set("filings-dir", "./local"))
	require.NoError(t, cmd.Flags().Set("max-results", "5"))
	require.NoError(t, cmd.Flags().Set("timeout", "10s"))
	require.NoError(t, cmd.Flags().Set("amendments", "false"))
	assert.Equal(t, "./local", settingString(cmd, "filings-dir", "filings_dir"))
	assert.Equal(t, 5, settingInt(cmd, "max-results", "store.max_results"))
	assert.Equal(t, 10*time.Second, settingDuration(cmd, "timeout", "acquire.timeout"))
	assert.False(t, settingBool(cmd, "amendments", "search.amendments"))

	// A key with no flag falls back to configuration alone.
	viper.Set("specs_file", "specs.yaml")
	assert.Equal(t, "specs.yaml", settingString(cmd, "specs", "specs_file"))
	assert.Empty(t, settingString(cmd, "deal-keyword", "deal_keyword"))
}

func TestQueryOptsFromFlags(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name    string
		flags   map[string]string
		args    []string
		want    store.QueryOptions
		wantErr string
	}{
		{
			name: "no filters",
			want: store.QueryOptions{},
		},
		{
			name:  "query and filters",
			args:  []string{"biotech", "seed"},
			flags: map[string]string{"cik": "0001234567", "deal-type": "Tranche", "valid": "yes", "limit": "3"},
			want: store.QueryOptions{
				Query: "biotech seed", CIK: "0001234567",
				DealType: types.DealTranche, Valid: &yes, MaxResults: 3,
			},
		},
		{
			name:  "invalid only",
			flags: map[string]string{"valid": "false"},
			want:  store.QueryOptions{Valid: &no},
		},
		{
			name:    "unknown deal type",
			flags:   map[string]string{"deal-type": "series-a"},
			wantErr: "unsupported deal type",
		},
		{
			name:    "unknown validity",
			flags:   map[string]string{"valid": "maybe"},
			wantErr: "unsupported --valid value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "list"}
			addFilterFlags(cmd)
			for k, v := range tt.flags {
				require.NoError(t, cmd.Flags().Set(k, v))
			}

			got, err := queryOptsFromFlags(cmd, tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleFiling(id, issuer string) *types.Filing {
	rec := types.FilingRecord{
		Fields: []types.ExtractedField{
			{Field: types.FieldCIK, Value: types.Found("0001234567"), Line: 0, Strategy: types.StrategySameLine},
			{Field: types.FieldIssuer, Value: types.Found(issuer), Line: 1, Strategy: types.StrategyOffset},
			{Field: types.FieldTotalOffering, Value: types.Found("$1,000,000"), Line: 4, Strategy: types.StrategySameLine},
		},
		Valid:    true,
		DealType: types.DealNew,
	}
	return &types.Filing{ID: id, Source: "filings/raw/" + id + ".txt", Record: rec, Summary: issuer + " has filed a Form D."}
}

func TestPrintFilings(t *testing.T) {
	one := []*types.Filing{sampleFiling("aaaaaaaaaaaa", "Acme Corp")}
	two := append(one, sampleFiling("bbbbbbbbbbbb", "Globex LLC"))

	var buf bytes.Buffer
	require.NoError(t, printFilings(&buf, "table", two))
	out := buf.String()
	assert.Contains(t, out, "filings/raw/aaaaaaaaaaaa.txt (aaaaaaaaaaaa)")
	assert.Contains(t, out, "Valid Filing?")
	assert.Contains(t, out, "Not found")
	assert.Contains(t, out, "Globex LLC has filed a Form D.")

	buf.Reset()
	require.NoError(t, printFilings(&buf, "json", one))
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "single filing renders as an object")

	buf.Reset()
	require.NoError(t, printFilings(&buf, "json", two))
	assert.True(t, strings.HasPrefix(buf.String(), "["), "several filings render as an array")

	buf.Reset()
	require.NoError(t, printFilings(&buf, "yaml", one))
	var back types.Filing
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "aaaaaaaaaaaa", back.ID)

	assert.ErrorContains(t, printFilings(&buf, "xml", one), "unsupported format")
}

func TestFormatListOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatListOutput(&buf, nil, 0))
	assert.Equal(t, "No filings found.\n", buf.String())

	buf.Reset()
	long := strings.Repeat("Very Long Issuer Name ", 3)
	results := []store.Result{{Filing: *sampleFiling("aaaaaaaaaaaa", long)}}
	require.NoError(t, formatListOutput(&buf, results, 1234))
	out := buf.String()
	assert.Contains(t, out, "aaaaaaaaaaaa")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "1 of 1,234 filings")
}

func TestConfigLayoutReadsBack(t *testing.T) {
	cfg := types.Config{
		Extraction: types.ExtractionConfig{
			Conversion:  types.ConversionConfig{PDFBackend: types.PDFDisabled},
			FilingsDir:  "/srv/filings",
			SpecsFile:   "specs.yaml",
			DealKeyword: "Follow-on",
			Force:       true,
		},
		Log:    types.LoggingConfig{Level: "debug", Format: "json"},
		Search: types.SearchConfig{MaxResults: 40, Amendments: true},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig:    types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: "Example Corp admin@example.com"},
			DownloadDelay: 2 * time.Second,
			FilingsDir:    "/srv/filings",
		},
		Store: types.StoreConfig{MaxResults: 25, FilingsDir: "/srv/filings"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteYAML(&buf, cfg))

	var top map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &top))
	assert.NotContains(t, top, "extraction")
	assert.NotContains(t, top, "force")
	assert.NotContains(t, top["store"], "filings_dir")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, "/srv/filings", v.GetString("filings_dir"))
	assert.Equal(t, "specs.yaml", v.GetString("specs_file"))
	assert.Equal(t, "Follow-on", v.GetString("deal_keyword"))
	assert.Equal(t, "none", v.GetString("convert.pdf_backend"))
	assert.Equal(t, "debug", v.GetString("log.level"))
	assert.Equal(t, 40, v.GetInt("search.max_results"))
	assert.True(t, v.GetBool("search.amendments"))
	assert.Equal(t, 30*time.Second, v.GetDuration("acquire.timeout"))
	assert.Equal(t, 2*time.Second, v.GetDuration("acquire.delay"))
	assert.Equal(t, "Example Corp admin@example.com", v.GetString("acquire.user_agent"))
	assert.Equal(t, 25, v.GetInt("store.max_results"))
}

func TestSourceURLFor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "metadata"), 0o755))
	require.NoError(t, acquire.WriteMetadata(&types.Acquisition{
		ID:        "0001234567-24-000123",
		SourceURL: "https://www.sec.gov/Archives/edgar/data/1234567/000123456724000123/xslFormDX01/primary_doc.xml",
	}, filepath.Join(dir, "metadata", "0001234567-24-000123.yaml")))

	got := sourceURLFor(dir, filepath.Join(dir, "raw", "0001234567-24-000123.html"))
	assert.Contains(t, got, "primary_doc.xml")
	assert.Empty(t, sourceURLFor(dir, filepath.Join(dir, "raw", "unknown.txt")))
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(raw, 0o755))
	src := filepath.Join(raw, "acme.txt")
	require.NoError(t, os.WriteFile(src, []byte(strings.Join([]string{
		"CIK (Filer ID Number) 0001234567",
		"Name of Issuer",
		"Acme Corp",
		"Total Offering Amount $1,000,000",
	}, "\n")), 0o644))

	ext, err := extract.New(extract.DefaultSpecs(), extract.Options{})
	require.NoError(t, err)
	p := extract.NewPipeline(convert.TextConverter{}, ext, nil)

	st, err := store.Open(types.StoreConfig{FilingsDir: dir})
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	f, err := processFile(ctx, p, st, dir, src)
	require.NoError(t, err)
	assert.True(t, f.Record.Valid)
	assert.Equal(t, "Acme Corp", f.Record.Get(types.FieldIssuer).Text)

	saved, err := extract.ReadResult(filepath.Join(dir, "extracted", "acme.txt.yaml"))
	require.NoError(t, err)
	assert.Equal(t, f.ID, saved.ID)

	stored, err := st.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Summary, stored.Summary)

	_, err = processFile(ctx, p, nil, dir, filepath.Join(raw, "missing.txt"))
	assert.Error(t, err)
}
