// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns free-form notes into an untyped structured payload by
// issuing one structured-generation request to a text-understanding service.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/malpone/report-geocom/pkg/types"
)

// ErrEmptyResponse is returned by backends that receive no text.
var ErrEmptyResponse = errors.New("empty response from extraction service")

// Backend abstracts the generative AI API so tests can supply a mock. One
// call is one request; implementations must ask the service for JSON.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExtractionError reports a failed or unusable extraction call. It is never
// retried by the client.
type ExtractionError struct {
	// Op is the failing step: "prompt", "generate" or "decode".
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Client builds the prompt, calls the backend once and decodes the reply.
type Client struct {
	backend Backend
	prompts *Prompts
	log     *slog.Logger
}

// NewClient returns a Client using the embedded prompt templates. A nil
// logger falls back to slog.Default().
func NewClient(backend Backend, log *slog.Logger) (*Client, error) {
	if backend == nil {
		return nil, errors.New("extraction backend is required")
	}
	prompts, err := NewPrompts()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{backend: backend, prompts: prompts, log: log}, nil
}

// Extract asks the service to structure rawText for the given format and
// returns the decoded JSON value (an object or a list, in practice).
func (c *Client) Extract(ctx context.Context, rawText string, format types.Format) (any, error) {
	prompt, err := c.prompts.Render(rawText, format)
	if err != nil {
		return nil, &ExtractionError{Op: "prompt", Err: err}
	}
	c.log.Debug("requesting extraction", "format", format, "prompt_length", len(prompt))

	text, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		return nil, &ExtractionError{Op: "generate", Err: err}
	}
	c.log.Debug("received extraction", "response_length", len(text))

	payload, err := decodePayload(text)
	if err != nil {
		return nil, &ExtractionError{Op: "decode", Err: err}
	}
	return payload, nil
}

// decodePayload parses the response body, tolerating a Markdown code fence
// around the JSON.
func decodePayload(text string) (any, error) {
	body := stripCodeFence(strings.TrimSpace(text))
	if body == "" {
		return nil, ErrEmptyResponse
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("parsing AI response JSON: %w", err)
	}
	return v, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
