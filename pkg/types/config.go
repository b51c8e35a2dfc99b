// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies the extraction service backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero keeps the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: gemini or anthropic.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-flash-latest").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxRetries is the number of retries on HTTP 429 (default 0, no retries).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// TemplateConfig names the two template assets.
type TemplateConfig struct {
	// Flow is the path of the .docx report template.
	Flow string `json:"flow" yaml:"flow" mapstructure:"flow"`

	// Slides is the path of the .pptx presentation template.
	Slides string `json:"slides" yaml:"slides" mapstructure:"slides"`
}

// SlidesConfig holds presentation-only options.
type SlidesConfig struct {
	// Banner is static text placed on every content slide. Empty disables it.
	Banner string `json:"banner" yaml:"banner" mapstructure:"banner"`
}

// DateConfig controls how the generation date is printed.
type DateConfig struct {
	// Locale selects month names: "it" (default) or "en".
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	// Dir is the default directory for generated files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// AppConfig groups all configuration for a generation run.
type AppConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Templates  TemplateConfig   `json:"templates" yaml:"templates" mapstructure:"templates"`
	Slides     SlidesConfig     `json:"slides" yaml:"slides" mapstructure:"slides"`
	Date       DateConfig       `json:"date" yaml:"date" mapstructure:"date"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultAppConfig returns the configuration used when nothing is set.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Extraction: ExtractionConfig{
			Provider: ProviderGemini,
			Model:    "gemini-flash-latest",
		},
		Templates: TemplateConfig{
			Flow:   "template_aziendale.docx",
			Slides: "template_aziendale.pptx",
		},
		Date:   DateConfig{Locale: "it"},
		Output: OutputConfig{Dir: "."},
		Log:    LogConfig{Level: "info"},
	}
}
