package provider

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig controls bounded retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff duration. Default: 30s.
	MaxBackoff time.Duration
}

// defaults fills zero-value fields with sensible defaults.
func (c *RetryConfig) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
}

// Retrier retries completion calls with exponential backoff. Only errors
// classified retryable by IsRetryable are retried; authentication and
// malformed-request failures propagate on the first attempt.
type Retrier struct {
	cfg    RetryConfig
	logger *slog.Logger

	// sleep is injectable for testing. Defaults to a context-aware sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier with the given config. A nil logger
// discards log output.
func NewRetrier(cfg RetryConfig, logger *slog.Logger) *Retrier {
	cfg.defaults()
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Retrier{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Complete calls p.Complete, retrying transient failures up to the
// configured attempt budget. The last error is returned when the budget
// is exhausted.
func (r *Retrier) Complete(ctx context.Context, p Provider, req CompletionRequest) (CompletionResponse, error) {
	backoff := r.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return CompletionResponse{}, err
		}

		resp, err := p.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRetryable(err) {
			return CompletionResponse{}, err
		}

		lastErr = err
		if attempt == r.cfg.MaxAttempts {
			break
		}

		r.logger.Warn("transient completion failure, backing off",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if err := r.sleep(ctx, backoff); err != nil {
			return CompletionResponse{}, err
		}

		backoff *= 2
		if backoff > r.cfg.MaxBackoff {
			backoff = r.cfg.MaxBackoff
		}
	}

	return CompletionResponse{}, lastErr
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nopHandler is a slog.Handler that discards all log records.
// Enabled returns false so slog skips formatting entirely (zero cost).
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
