// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate runs one report generation: extraction, date stamping,
// normalization and rendering into the requested document format.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/malpone/report-geocom/internal/extract"
	"github.com/malpone/report-geocom/internal/markup"
	"github.com/malpone/report-geocom/internal/normalize"
	"github.com/malpone/report-geocom/internal/render"
	"github.com/malpone/report-geocom/pkg/types"
)

const dateKey = "data_odierna"

var (
	// ErrEmptyText is returned when the request carries no notes.
	ErrEmptyText = errors.New("no text to process")

	// ErrMissingCredentials is returned when the request carries no API key.
	ErrMissingCredentials = errors.New("missing API key for the extraction service")
)

// Request is one generation request.
type Request struct {
	Text   string
	Format types.Format
	APIKey string
}

// BackendFactory builds an extraction backend for an API key.
type BackendFactory func(ctx context.Context, apiKey string) (extract.Backend, error)

// Generator turns notes into a rendered document.
type Generator struct {
	backends  BackendFactory
	templates types.TemplateConfig
	banner    string
	locale    string
	now       func() time.Time
	preview   func(types.ReportDocument)
	log       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used to stamp the report date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger passed to every stage.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithPreview registers fn to receive the normalized document before it is
// rendered.
func WithPreview(fn func(types.ReportDocument)) Option {
	return func(g *Generator) { g.preview = fn }
}

// New returns a Generator using the template, slide and date settings of cfg.
func New(cfg types.AppConfig, backends BackendFactory, opts ...Option) *Generator {
	g := &Generator{
		backends:  backends,
		templates: cfg.Templates,
		banner:    cfg.Slides.Banner,
		locale:    cfg.Date.Locale,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Generate runs the pipeline for req and returns the rendered artifact.
// The first failing stage ends the run.
func (g *Generator) Generate(ctx context.Context, req Request) (*types.Artifact, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	format := req.Format
	if format == "" {
		format = types.FormatFlow
	}
	if format != types.FormatFlow && format != types.FormatSlides {
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	backend, err := g.backends(ctx, req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating extraction backend: %w", err)
	}
	client, err := extract.NewClient(backend, g.log)
	if err != nil {
		return nil, err
	}
	raw, err := client.Extract(ctx, req.Text, format)
	if err != nil {
		return nil, fmt.Errorf("extracting report: %w", err)
	}

	raw = stampDate(raw, FormatDate(g.now(), g.locale))
	doc, err := normalize.New(g.log).Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing report: %w", err)
	}
	g.log.Info("report extracted", "title", markup.Strip(doc.Title), "sections", len(doc.Sections))
	if g.preview != nil {
		g.preview(doc)
	}

	data, err := g.render(doc, format)
	if err != nil {
		return nil, err
	}
	g.log.Info("report rendered", "format", format, "bytes", len(data))
	return &types.Artifact{
		Name:     format.FileName(),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}

func (g *Generator) render(doc types.ReportDocument, format types.Format) ([]byte, error) {
	if format == types.FormatSlides {
		return render.Slides(doc, render.Template{Path: g.templates.Slides}, render.SlidesOptions{
			Banner: g.banner,
			Logger: g.log,
		})
	}
	return render.Flow(doc, render.Template{Path: g.templates.Flow})
}

// stampDate sets the report date on every object of the payload. The model's
// own value is never kept.
func stampDate(raw any, date string) any {
	switch v := raw.(type) {
	case map[string]any:
		out := maps.Clone(v)
		if out == nil {
			out = make(map[string]any)
		}
		out[dateKey] = date
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = stampDate(elem, date)
		}
		return out
	default:
		return raw
	}
}
