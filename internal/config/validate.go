package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/deskbot/internal/prompt"
)

// ErrCredentialMissing indicates no API credential was found in the
// configuration, the environment, or a .env file. Raised before any
// remote call; deliberately distinct from a remote authentication
// failure so the two are never confused in diagnostics.
var ErrCredentialMissing = errors.New(
	"config: credential not found: provider.api_key is empty (set OPENAI_API_KEY in the environment or a .env file)")

// Validate checks the structural validity of a Config. All problems are
// reported at once via a joined error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.Provider.APIKey == "" {
		errs = append(errs, ErrCredentialMissing)
	}

	if cfg.Chat.Template != "" {
		if _, err := prompt.ParseTemplate(cfg.Chat.Template); err != nil {
			errs = append(errs, fmt.Errorf("config: chat.template: %w", err))
		}
	}
	if cfg.Chat.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("config: chat.max_turns must not be negative, got %d", cfg.Chat.MaxTurns))
	}
	if cfg.Chat.MaxPromptTokens < 0 {
		errs = append(errs, fmt.Errorf("config: chat.max_prompt_tokens must not be negative, got %d", cfg.Chat.MaxPromptTokens))
	}

	errs = append(errs, validateDuration("chat.request_timeout", cfg.Chat.RequestTimeout)...)
	errs = append(errs, validateDuration("retry.initial_backoff", cfg.Retry.InitialBackoff)...)
	errs = append(errs, validateDuration("retry.max_backoff", cfg.Retry.MaxBackoff)...)

	if cfg.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("config: retry.max_attempts must not be negative, got %d", cfg.Retry.MaxAttempts))
	}

	return errors.Join(errs...)
}

// validateDuration checks that an optional duration string parses.
func validateDuration(field, value string) []error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return []error{fmt.Errorf("config: %s: invalid duration %q: %w", field, value, err)}
	}
	return nil
}
