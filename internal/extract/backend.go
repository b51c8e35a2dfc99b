// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/malpone/report-geocom/pkg/types"
)

// DefaultClaudeModel is used for the anthropic provider when no model is configured.
const DefaultClaudeModel = "claude-sonnet-4-5"

// NewBackend builds the backend selected by cfg.Provider for apiKey.
func NewBackend(ctx context.Context, cfg types.ExtractionConfig, apiKey string, log *slog.Logger) (Backend, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	var httpClient *http.Client
	if cfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	switch cfg.Provider {
	case types.ProviderGemini, "":
		return NewGeminiBackend(ctx, apiKey, cfg.Model, httpClient, log)
	case types.ProviderAnthropic:
		model := cfg.Model
		if model == "" || model == DefaultGeminiModel {
			model = DefaultClaudeModel
		}
		return &ClaudeBackend{
			APIKey:     apiKey,
			Model:      model,
			Client:     httpClient,
			MaxRetries: cfg.MaxRetries,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported extraction provider %q: use gemini or anthropic", cfg.Provider)
	}
}
