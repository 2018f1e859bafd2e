// Package provider adapts the supported LLM backends behind a single
// Generate entry point.
//
// Gemini is driven through the official genai SDK with native structured
// output. ChatGPT and DeepSeek share one OpenAI-compatible code path with a
// strict JSON schema response format; DeepSeek only differs in base URL,
// model name and prompt language. All three return the same journey shape
// and all failures are wrapped in a ProviderError naming the backend.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

const (
	geminiModel   = "gemini-2.5-flash"
	chatGPTModel  = "gpt-4o"
	deepSeekModel = "deepseek-chat"

	generationTemperature = 0.7
)

// DefaultDeepSeekBaseURL is the DeepSeek OpenAI-compatible endpoint.
const DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

var (
	// ErrEmptyResponse indicates the backend answered without any usable content.
	ErrEmptyResponse = errors.New("provider returned an empty response")
	// ErrBadShape indicates the backend answered with JSON that does not
	// decode into a journey with at least one stage.
	ErrBadShape = errors.New("provider response does not match the journey shape")
)

// ProviderError wraps a backend failure with the provider that produced it.
type ProviderError struct {
	Provider models.Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// GenerateRequest carries everything a single generation call needs. The
// API key travels with the request so concurrent sessions can hold
// different keys for the same provider.
type GenerateRequest struct {
	Prompt     string
	Variables  models.ContextVariables
	APIKey     string
	Background string
}

// Opts holds the configuration for Client.
type Opts struct {
	// DeepSeekBaseURL overrides the DeepSeek endpoint. Defaults to
	// DefaultDeepSeekBaseURL.
	DeepSeekBaseURL string
	// ChatGPTBaseURL overrides the OpenAI endpoint. Empty means the SDK default.
	ChatGPTBaseURL string
	// GeminiBaseURL overrides the Gemini endpoint. Empty means the SDK default.
	GeminiBaseURL string
	// HTTPClient overrides the HTTP client used for backend calls.
	HTTPClient *http.Client
}

// Option configures Opts.
type Option func(*Opts)

// WithDeepSeekBaseURL sets the DeepSeek endpoint.
func WithDeepSeekBaseURL(u string) Option {
	return func(o *Opts) { o.DeepSeekBaseURL = u }
}

// WithChatGPTBaseURL sets the OpenAI endpoint.
func WithChatGPTBaseURL(u string) Option {
	return func(o *Opts) { o.ChatGPTBaseURL = u }
}

// WithGeminiBaseURL sets the Gemini endpoint.
func WithGeminiBaseURL(u string) Option {
	return func(o *Opts) { o.GeminiBaseURL = u }
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client dispatches generation calls to the selected backend.
type Client struct {
	opts Opts
}

// NewClient creates a provider client with the given options applied.
func NewClient(options ...Option) *Client {
	opts := Opts{DeepSeekBaseURL: DefaultDeepSeekBaseURL}
	for _, opt := range options {
		opt(&opts)
	}
	return &Client{opts: opts}
}

// Generate runs one journey generation against the named provider. The
// context governs the underlying HTTP calls; cancelling it aborts the
// request in flight.
func (c *Client) Generate(ctx context.Context, p models.Provider, req GenerateRequest) (*models.JourneyData, error) {
	if !models.IsValidProvider(p) {
		return nil, &ProviderError{Provider: p, Err: models.ErrInvalidProvider}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, &ProviderError{Provider: p, Err: models.ErrEmptyPrompt}
	}
	if req.APIKey == "" {
		return nil, &ProviderError{Provider: p, Err: models.ErrMissingAPIKey}
	}

	slog.Debug("provider.Generate invoked", "provider", p, "promptLen", len(req.Prompt), "hasBackground", req.Background != "")

	var (
		data *models.JourneyData
		err  error
	)
	switch p {
	case models.ProviderGemini:
		data, err = c.generateGemini(ctx, req)
	default:
		data, err = c.generateOpenAICompat(ctx, p, req)
	}
	if err != nil {
		slog.Error("provider.Generate failed", "provider", p, "error", err)
		return nil, &ProviderError{Provider: p, Err: err}
	}
	slog.Debug("provider.Generate succeeded", "provider", p, "stages", len(data.Stages))
	return data, nil
}
