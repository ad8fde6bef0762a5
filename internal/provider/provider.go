// Package provider defines the interface for communicating with a remote
// text-completion service, the error taxonomy for its failures, and a
// bounded retry helper for the transient classes.
package provider

import "context"

// Provider is the interface for a remote completion service.
// Concrete implementations live in separate packages (e.g. provider/openai).
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ContextWindowSize returns the maximum context window in tokens.
	ContextWindowSize() int

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement to
// support active probing, e.g. from the doctor command.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
