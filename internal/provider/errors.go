package provider

import "errors"

// Sentinel errors for provider operations. The session loop and the
// retrier key their behavior off this taxonomy, so providers must wrap
// one of these for every remote failure.
var (
	// ErrAuth indicates the credential was rejected. Not retryable;
	// surfaced immediately and fatal for the session.
	ErrAuth = errors.New("provider: authentication failed")

	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("provider: rate limited")

	// ErrBadRequest indicates the provider rejected the request as
	// malformed. Not retryable; fatal for the turn.
	ErrBadRequest = errors.New("provider: malformed request")

	// ErrUnavailable indicates a transient network or server failure.
	ErrUnavailable = errors.New("provider: unavailable")

	// ErrContextLength indicates the request exceeded the model's
	// context window.
	ErrContextLength = errors.New("provider: context length exceeded")
)

// ErrorClass returns a stable label for the error's place in the
// taxonomy, for metrics and user-facing messages.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrContextLength):
		return "context_length"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// IsRetryable reports whether the error is transient and the request can
// be retried after a delay. Exactly the rate-limit and unavailable
// classes qualify; authentication and malformed-request failures are
// surfaced immediately.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable)
}
