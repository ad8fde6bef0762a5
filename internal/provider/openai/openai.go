// Package openai implements the provider interface against the OpenAI
// Chat Completions API. The rendered prompt payload is submitted as a
// single user message.
package openai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/flemzord/deskbot/internal/provider"
)

// Compile-time interface guards.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)

// Provider is an OpenAI-backed completion provider.
type Provider struct {
	config        Config
	logger        *slog.Logger
	client        *http.Client
	contextWindow int
}

// ErrMissingCredential indicates no API key was supplied. This is a local
// configuration failure, distinct from a remote authentication failure:
// it is raised before any request is issued.
var ErrMissingCredential = errors.New("openai: api_key is missing (set OPENAI_API_KEY or provider.api_key)")

// New creates a Provider from the given config. It fails fast on a
// missing credential or model so no remote call is ever attempted with
// an incomplete setup.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()

	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Resolve context window: explicit config > known model map > 0.
	contextWindow := cfg.ContextWindow
	if contextWindow <= 0 {
		contextWindow = knownContextWindows[cfg.Model]
	}
	if contextWindow <= 0 {
		return nil, errors.New("openai: context_window must be set for unknown models")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		config: cfg,
		logger: logger.With("component", "provider.openai"),
		client: &http.Client{
			Timeout: cfg.parsedTimeout(),
		},
		contextWindow: contextWindow,
	}, nil
}

// ContextWindowSize returns the maximum context window in tokens.
func (p *Provider) ContextWindowSize() int {
	return p.contextWindow
}

// ModelName returns the configured model identifier.
func (p *Provider) ModelName() string {
	return p.config.Model
}
