// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malpone/report-geocom/internal/extract"
	"github.com/malpone/report-geocom/internal/normalize"
	"github.com/malpone/report-geocom/internal/ooxml"
	"github.com/malpone/report-geocom/internal/render"
	"github.com/malpone/report-geocom/pkg/types"
)

const samplePayload = `{
  "titolo_report": "Revisione trimestrale",
  "sottotitolo_report": "Team Geocom",
  "data_odierna": "DD MMMM YYYY",
  "lista_sezioni": [
    {"titolo": "Risultati", "testo": "Fatturato **in crescita**\nCosti *stabili*"},
    {"titolo": "Prossimi passi", "testo": "Assumere due tecnici"}
  ]
}`

type mockBackend struct {
	response string
	err      error
	calls    int
}

func (m *mockBackend) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.response, m.err
}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
}

// testConfig writes the starter templates into a temporary directory.
func testConfig(t *testing.T) types.AppConfig {
	t.Helper()
	dir := t.TempDir()
	flow, err := render.StarterFlowTemplate()
	require.NoError(t, err)
	slides, err := render.StarterSlidesTemplate()
	require.NoError(t, err)

	cfg := types.DefaultAppConfig()
	cfg.Templates.Flow = filepath.Join(dir, "template_aziendale.docx")
	cfg.Templates.Slides = filepath.Join(dir, "template_aziendale.pptx")
	require.NoError(t, os.WriteFile(cfg.Templates.Flow, flow, 0o644))
	require.NoError(t, os.WriteFile(cfg.Templates.Slides, slides, 0o644))
	return cfg
}

func newGenerator(t *testing.T, cfg types.AppConfig, backend *mockBackend, opts ...Option) *Generator {
	t.Helper()
	factory := func(_ context.Context, apiKey string) (extract.Backend, error) {
		assert.Equal(t, "test-key", apiKey)
		return backend, nil
	}
	return New(cfg, factory, append([]Option{WithClock(fixedClock)}, opts...)...)
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	pkg, err := ooxml.Read(data)
	require.NoError(t, err)
	content, ok := pkg.Part(name)
	require.True(t, ok, name)
	return string(content)
}

// isZipFamily reports whether mimetype places data under application/zip.
func isZipFamily(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

func TestGenerateFlow(t *testing.T) {
	backend := &mockBackend{response: samplePayload}
	g := newGenerator(t, testConfig(t), backend)

	art, err := g.Generate(context.Background(), Request{Text: "appunti riunione", Format: types.FormatFlow, APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, "Report_Finale.docx", art.Name)
	assert.Equal(t, types.FormatFlow.MIMEType(), art.MIMEType)
	assert.True(t, isZipFamily(art.Data))
	assert.Equal(t, 1, backend.calls)

	doc := readPart(t, art.Data, "word/document.xml")
	assert.Contains(t, doc, "<w:t>Revisione trimestrale</w:t>")
	assert.Contains(t, doc, "<w:t>15 ottobre 2026</w:t>")
	assert.NotContains(t, doc, "DD MMMM YYYY")
	assert.Less(t, strings.Index(doc, "Risultati"), strings.Index(doc, "Prossimi passi"))
}

func TestGenerateSlides(t *testing.T) {
	backend := &mockBackend{response: "```json\n[" + samplePayload + `, {"titolo_report": "Ignorato"}]` + "\n```"}
	cfg := testConfig(t)
	cfg.Slides.Banner = "Uso interno"
	cfg.Date.Locale = "en"

	var previewed types.ReportDocument
	g := newGenerator(t, cfg, backend, WithPreview(func(doc types.ReportDocument) { previewed = doc }))

	art, err := g.Generate(context.Background(), Request{Text: "appunti", Format: types.FormatSlides, APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, "Presentazione_Finale.pptx", art.Name)
	assert.Equal(t, types.FormatSlides.MIMEType(), art.MIMEType)
	assert.True(t, isZipFamily(art.Data))

	assert.Equal(t, "Revisione trimestrale", previewed.Title)
	assert.Equal(t, "15 October 2026", previewed.GeneratedDate)
	require.Len(t, previewed.Sections, 2)

	pres := readPart(t, art.Data, "ppt/presentation.xml")
	assert.Equal(t, 3, strings.Count(pres, "<p:sldId "))
	cover := readPart(t, art.Data, "ppt/slides/slide1.xml")
	assert.Contains(t, cover, "<a:t>15 October 2026</a:t>")
	content := readPart(t, art.Data, "ppt/slides/slide2.xml")
	assert.Contains(t, content, `<a:rPr b="1"/><a:t>in crescita</a:t>`)
	assert.Contains(t, content, "<a:t>Uso interno</a:t>")
}

func TestGenerateDefaultsToFlow(t *testing.T) {
	g := newGenerator(t, testConfig(t), &mockBackend{response: samplePayload})
	art, err := g.Generate(context.Background(), Request{Text: "appunti", APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "Report_Finale.docx", art.Name)
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "empty text", req: Request{Text: "", APIKey: "test-key"}, wantErr: ErrEmptyText},
		{name: "blank text", req: Request{Text: " \n\t", APIKey: "test-key"}, wantErr: ErrEmptyText},
		{name: "missing key", req: Request{Text: "appunti"}, wantErr: ErrMissingCredentials},
		{name: "blank key", req: Request{Text: "appunti", APIKey: "  "}, wantErr: ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{response: samplePayload}
			_, err := newGenerator(t, testConfig(t), backend).Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, backend.calls)
		})
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	backend := &mockBackend{response: samplePayload}
	_, err := newGenerator(t, testConfig(t), backend).Generate(context.Background(),
		Request{Text: "appunti", Format: "pdf", APIKey: "test-key"})
	assert.ErrorContains(t, err, "unsupported format")
	assert.Zero(t, backend.calls)
}

func TestGenerateBackendFactoryError(t *testing.T) {
	g := New(testConfig(t), func(context.Context, string) (extract.Backend, error) {
		return nil, errors.New("no credentials for provider")
	})
	_, err := g.Generate(context.Background(), Request{Text: "appunti", APIKey: "k"})
	assert.ErrorContains(t, err, "creating extraction backend")
}

func TestGenerateStageErrors(t *testing.T) {
	t.Run("extraction", func(t *testing.T) {
		g := newGenerator(t, testConfig(t), &mockBackend{err: errors.New("quota exceeded")})
		_, err := g.Generate(context.Background(), Request{Text: "appunti", APIKey: "test-key"})
		var extErr *extract.ExtractionError
		assert.ErrorAs(t, err, &extErr)
	})

	t.Run("schema", func(t *testing.T) {
		g := newGenerator(t, testConfig(t), &mockBackend{response: `"solo testo"`})
		_, err := g.Generate(context.Background(), Request{Text: "appunti", APIKey: "test-key"})
		var schemaErr *normalize.SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("missing template", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Templates.Slides = filepath.Join(t.TempDir(), "assente.pptx")
		g := newGenerator(t, cfg, &mockBackend{response: samplePayload})
		art, err := g.Generate(context.Background(), Request{Text: "appunti", Format: types.FormatSlides, APIKey: "test-key"})
		assert.Nil(t, art)
		var missing *render.TemplateMissingError
		assert.ErrorAs(t, err, &missing)
	})
}

func TestStampDate(t *testing.T) {
	obj := map[string]any{"titolo_report": "X", "data_odierna": "DD MMMM YYYY"}
	got := stampDate(obj, "15 ottobre 2026")
	assert.Equal(t, map[string]any{"titolo_report": "X", "data_odierna": "15 ottobre 2026"}, got)
	assert.Equal(t, "DD MMMM YYYY", obj["data_odierna"], "input is not modified")

	list := stampDate([]any{map[string]any{}, "x"}, "d")
	assert.Equal(t, []any{map[string]any{"data_odierna": "d"}, "x"}, list)

	assert.Equal(t, 42, stampDate(42, "d"))
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		locale, want string
	}{
		{"it", "05 marzo 2026"},
		{"en", "05 March 2026"},
		{"fr", "05 marzo 2026"},
		{"", "05 marzo 2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(day, tt.locale), tt.locale)
	}
	assert.Equal(t, "31 dicembre 2026", FormatDate(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), "it"))
}
