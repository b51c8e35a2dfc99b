// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malpone/report-geocom/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAppConfig(), cfg)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("REPORT_GEOCOM_EXTRACTION_PROVIDER", "anthropic")
	t.Setenv("REPORT_GEOCOM_EXTRACTION_TIMEOUT", "30s")
	t.Setenv("REPORT_GEOCOM_EXTRACTION_MAX_RETRIES", "2")
	t.Setenv("REPORT_GEOCOM_SLIDES_BANNER", "Riservato")
	t.Setenv("REPORT_GEOCOM_API_KEY", "env-key")

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.ProviderAnthropic, cfg.Extraction.Provider)
	assert.Equal(t, 30*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 2, cfg.Extraction.MaxRetries)
	assert.Equal(t, "Riservato", cfg.Slides.Banner)
	assert.Equal(t, "template_aziendale.docx", cfg.Templates.Flow)
	assert.Equal(t, "env-key", v.GetString("api_key"))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report-geocom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
extraction:
  model: gemini-2.5-pro
templates:
  slides: modelli/aziendale.pptx
date:
  locale: en
`), 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Extraction.Model)
	assert.Equal(t, types.ProviderGemini, cfg.Extraction.Provider)
	assert.Equal(t, "modelli/aziendale.pptx", cfg.Templates.Slides)
	assert.Equal(t, "en", cfg.Date.Locale)
}

func TestResolveAPIKey(t *testing.T) {
	old := loadedSecrets
	loadedSecrets = map[string]string{"gemini-api-key": "file-gemini", "anthropic-api-key": "file-anthropic"}
	t.Cleanup(func() { loadedSecrets = old })

	tests := []struct {
		name       string
		flag       string
		configured string
		provider   types.Provider
		want       string
	}{
		{name: "flag wins", flag: "flag-key", configured: "env-key", provider: types.ProviderGemini, want: "flag-key"},
		{name: "environment over secrets", configured: "env-key", provider: types.ProviderGemini, want: "env-key"},
		{name: "gemini key file", provider: types.ProviderGemini, want: "file-gemini"},
		{name: "anthropic key file", provider: types.ProviderAnthropic, want: "file-anthropic"},
		{name: "unknown provider", provider: "openai", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveAPIKey(tt.flag, tt.configured, tt.provider))
		})
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "appunti.txt")
	require.NoError(t, os.WriteFile(notes, []byte("Riunione di lunedì: **budget** approvato.\n"), 0o644))
	binary := filepath.Join(dir, "foto.png")
	require.NoError(t, os.WriteFile(binary, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))

	got, err := readInput(notes, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "Riunione di lunedì: **budget** approvato.\n", got)

	got, err = readInput("", strings.NewReader("dallo stdin"))
	require.NoError(t, err)
	assert.Equal(t, "dallo stdin", got)

	got, err = readInput("-", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = readInput(binary, nil)
	assert.ErrorContains(t, err, "expected plain text")

	_, err = readInput(filepath.Join(dir, "assente.txt"), nil)
	assert.ErrorContains(t, err, "reading input")
}

func TestWriteArtifact(t *testing.T) {
	art := &types.Artifact{Name: "Report_Finale.docx", Data: []byte("PK")}
	dir := t.TempDir()

	path, err := writeArtifact(art, "", filepath.Join(dir, "out"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "Report_Finale.docx"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, art.Data, data)

	explicit := filepath.Join(dir, "custom.docx")
	path, err = writeArtifact(art, explicit, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	var stdout bytes.Buffer
	path, err = writeArtifact(art, "-", dir, &stdout)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "PK", stdout.String())
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	err := writePreview(&buf, types.ReportDocument{
		Title:         "Report",
		GeneratedDate: "15 ottobre 2026",
		Sections:      []types.Section{{Heading: "Uno", Body: "Testo"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "titolo_report: Report")
	assert.Contains(t, out, "data_odierna: 15 ottobre 2026")
	assert.Contains(t, out, "lista_sezioni:")
	assert.Contains(t, out, "titolo: Uno")
}

func TestWriteStarters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "modelli")
	var status bytes.Buffer

	require.NoError(t, writeStarters(dir, "a.docx", "a.pptx", false, &status))
	assert.FileExists(t, filepath.Join(dir, "a.docx"))
	assert.FileExists(t, filepath.Join(dir, "a.pptx"))
	assert.Equal(t, 2, strings.Count(status.String(), "Wrote "))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.docx"), []byte("custom"), 0o644))
	status.Reset()
	require.NoError(t, writeStarters(dir, "a.docx", "a.pptx", false, &status))
	assert.Equal(t, 2, strings.Count(status.String(), "Skipping "))
	data, err := os.ReadFile(filepath.Join(dir, "a.docx"))
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))

	status.Reset()
	require.NoError(t, writeStarters(dir, "a.docx", "a.pptx", true, &status))
	assert.Equal(t, 2, strings.Count(status.String(), "Wrote "))
}
