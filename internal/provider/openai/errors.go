package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/flemzord/deskbot/internal/provider"
)

// mapHTTPError maps an HTTP status code and response body to a provider
// sentinel error. Returns nil for 2xx status codes.
func mapHTTPError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	// Try to extract the error message from the response body.
	var msg string
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	} else {
		msg = string(body)
	}

	switch {
	case statusCode == 429:
		return fmt.Errorf("%w: %s", provider.ErrRateLimit, msg)
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: %s", provider.ErrAuth, msg)
	case statusCode == 400 && strings.Contains(strings.ToLower(msg), "context_length"):
		return fmt.Errorf("%w: %s", provider.ErrContextLength, msg)
	case statusCode >= 400 && statusCode < 500:
		return fmt.Errorf("%w: HTTP %d: %s", provider.ErrBadRequest, statusCode, msg)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", provider.ErrUnavailable, statusCode, msg)
	}
}

// mapConnectionError maps network-level errors to provider sentinel
// errors. Timeouts count as transient so the retrier may try again;
// caller-initiated cancellation passes through unchanged.
func mapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
	return fmt.Errorf("openai: %w", err)
}
