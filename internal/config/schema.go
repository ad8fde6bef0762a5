// Package config handles YAML configuration loading, .env credential
// loading, environment variable expansion, and structural validation.
package config

import (
	"time"

	"github.com/flemzord/deskbot/internal/provider"
	"github.com/flemzord/deskbot/internal/provider/openai"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Provider configures the OpenAI completion provider.
	Provider openai.Config `yaml:"provider"`

	// Chat configures prompt assembly and the session.
	Chat ChatSettings `yaml:"chat"`

	// Retry configures bounded retry for transient remote failures.
	Retry RetrySettings `yaml:"retry"`

	// Status optionally enables the local status/metrics endpoint.
	Status StatusSettings `yaml:"status"`
}

// ChatSettings configures prompt assembly and session behavior.
type ChatSettings struct {
	// Template overrides the built-in instruction template. Must contain
	// the {history} and {input} slots exactly once each.
	Template string `yaml:"template"`

	// UserLabel prefixes user turns in the rendered history.
	UserLabel string `yaml:"user_label"`

	// AssistantLabel prefixes assistant turns in the rendered history.
	AssistantLabel string `yaml:"assistant_label"`

	// MaxTurns bounds the retained conversation history. 0 uses the
	// built-in default.
	MaxTurns int `yaml:"max_turns"`

	// MaxPromptTokens bounds the rendered payload size. 0 disables the
	// bound.
	MaxPromptTokens int `yaml:"max_prompt_tokens"`

	// ReservedForReply reserves part of the token budget for the reply.
	ReservedForReply int `yaml:"reserved_for_reply"`

	// RequestTimeout bounds one exchange, retries included
	// (Go duration string). Default: 2m.
	RequestTimeout string `yaml:"request_timeout"`
}

// ParsedRequestTimeout returns the timeout as a time.Duration.
// Assumes the value has been validated.
func (c ChatSettings) ParsedRequestTimeout() time.Duration {
	if c.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// RetrySettings configures the retrier.
type RetrySettings struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the delay before the first retry
	// (Go duration string). Default: 1s.
	InitialBackoff string `yaml:"initial_backoff"`

	// MaxBackoff caps the exponential backoff (Go duration string).
	// Default: 30s.
	MaxBackoff string `yaml:"max_backoff"`
}

// RetryConfig converts the settings to a provider.RetryConfig.
// Assumes the values have been validated.
func (c RetrySettings) RetryConfig() provider.RetryConfig {
	cfg := provider.RetryConfig{MaxAttempts: c.MaxAttempts}
	if d, err := time.ParseDuration(c.InitialBackoff); err == nil {
		cfg.InitialBackoff = d
	}
	if d, err := time.ParseDuration(c.MaxBackoff); err == nil {
		cfg.MaxBackoff = d
	}
	return cfg
}

// StatusSettings configures the optional status server.
type StatusSettings struct {
	// Addr is the listen address (e.g. "127.0.0.1:9090").
	// Empty disables the server.
	Addr string `yaml:"addr"`
}
