// Package chat owns the conversation session and the interactive console
// loop: assemble the payload, call the completion service, record the
// exchange.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/flemzord/deskbot/internal/memory"
	"github.com/flemzord/deskbot/internal/prompt"
	"github.com/flemzord/deskbot/internal/provider"
)

// Recorder receives exchange outcomes for metrics. Implementations must
// be safe for concurrent use.
type Recorder interface {
	RecordExchange(usage provider.TokenUsage, d time.Duration)
	RecordError(class string)
}

// SessionConfig holds per-session generation and timeout settings.
type SessionConfig struct {
	// MaxTokens caps the model reply. 0 uses the provider default.
	MaxTokens int

	// Temperature overrides the provider default when non-nil.
	Temperature *float64

	// TopP overrides the provider default when non-nil.
	TopP *float64

	// RequestTimeout bounds each remote call, retries included.
	// Default: 2m.
	RequestTimeout time.Duration
}

// withDefaults fills zero-value fields with sensible defaults.
func (c SessionConfig) withDefaults() SessionConfig {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 2 * time.Minute
	}
	return c
}

// Session drives one conversation: it owns its history buffer exclusively
// and never shares it. Concurrent sessions are independent by
// construction.
//
// The exchange pipeline is a fixed composition: render the payload from a
// history snapshot, complete against the provider (with bounded retry for
// transient failures), then record the user/assistant pair. The pair is
// appended only after a successful completion, so a failed call never
// leaves an unanswered user turn in history.
type Session struct {
	buffer    *memory.Buffer
	assembler *prompt.Assembler
	provider  provider.Provider
	retrier   *provider.Retrier
	recorder  Recorder
	logger    *slog.Logger
	config    SessionConfig
}

// NewSession creates a Session over its own empty buffer. recorder may
// be nil when metrics are disabled.
func NewSession(
	buffer *memory.Buffer,
	assembler *prompt.Assembler,
	p provider.Provider,
	retrier *provider.Retrier,
	recorder Recorder,
	logger *slog.Logger,
	cfg SessionConfig,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		buffer:    buffer,
		assembler: assembler,
		provider:  p,
		retrier:   retrier,
		recorder:  recorder,
		logger:    logger.With("component", "chat"),
		config:    cfg.withDefaults(),
	}
}

// Exchange runs one complete turn: render, complete, record.
// Empty input returns prompt.ErrEmptyInput without touching the network
// or the buffer. On any remote failure the buffer is left exactly as it
// was.
func (s *Session) Exchange(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)

	rendered, err := s.assembler.Render(s.buffer.Snapshot(), input)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.retrier.Complete(ctx, s.provider, provider.CompletionRequest{
		Prompt:      rendered.Payload,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		TopP:        s.config.TopP,
	})
	if err != nil {
		if s.recorder != nil {
			s.recorder.RecordError(provider.ErrorClass(err))
		}
		s.logger.Warn("exchange failed",
			"class", provider.ErrorClass(err),
			"turns_rendered", rendered.TurnsIncluded,
			"error", err,
		)
		return "", err
	}

	if err := s.buffer.AppendExchange(memory.UserTurn(input), memory.AssistantTurn(resp.Content)); err != nil {
		return "", err
	}

	elapsed := time.Since(started)
	if s.recorder != nil {
		s.recorder.RecordExchange(resp.Usage, elapsed)
	}
	s.logger.Debug("exchange completed",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"turns_rendered", rendered.TurnsIncluded,
		"turns_dropped", rendered.TurnsDropped,
		"duration", elapsed,
	)

	return resp.Content, nil
}

// History returns a point-in-time copy of the session's turns.
func (s *Session) History() []memory.Turn {
	return s.buffer.Snapshot()
}

// Turns returns the number of recorded turns.
func (s *Session) Turns() int {
	return s.buffer.Len()
}

// ModelName returns the underlying provider's model identifier.
func (s *Session) ModelName() string {
	return s.provider.ModelName()
}
