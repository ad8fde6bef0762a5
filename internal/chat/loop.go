package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flemzord/deskbot/internal/prompt"
	"github.com/flemzord/deskbot/internal/provider"
)

// exitSentinel terminates the loop when entered on its own,
// case-insensitively, after trimming.
const exitSentinel = "exit"

// maxInputLine bounds a single input line (1 MB).
const maxInputLine = 1 << 20

// LoopConfig controls the console loop's presentation.
type LoopConfig struct {
	// UserPrompt is printed before reading a line. Default: "You: ".
	UserPrompt string

	// ReplyLabel prefixes assistant replies. Default: "Support Agent".
	ReplyLabel string

	// Greeting is printed once at startup.
	Greeting string

	// Farewell is printed when the exit sentinel is entered.
	Farewell string
}

// withDefaults fills zero-value fields with sensible defaults.
func (c LoopConfig) withDefaults() LoopConfig {
	if c.UserPrompt == "" {
		c.UserPrompt = "You: "
	}
	if c.ReplyLabel == "" {
		c.ReplyLabel = "Support Agent"
	}
	if c.Greeting == "" {
		c.Greeting = "Welcome! I'm here to help. Type 'exit' to quit."
	}
	if c.Farewell == "" {
		c.Farewell = "Thank you for using our support! Goodbye!"
	}
	return c
}

// Loop is the interactive console loop: read a line, run the exchange,
// print the reply. Strictly sequential; it blocks on input, then on the
// remote call, then on output.
type Loop struct {
	session *Session
	in      io.Reader
	out     io.Writer
	config  LoopConfig
}

// NewLoop creates a Loop over the given streams. Streams are injectable
// so tests can drive the loop without a terminal.
func NewLoop(session *Session, in io.Reader, out io.Writer, cfg LoopConfig) *Loop {
	return &Loop{
		session: session,
		in:      in,
		out:     out,
		config:  cfg.withDefaults(),
	}
}

// Run drives the loop until the exit sentinel, end of input, context
// cancellation, or a fatal failure.
//
// Blank input re-prompts locally without a remote call. Remote failures
// are reported human-readably; the authentication class is fatal for the
// session, every other class lets the user try again.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintf(l.out, "%s\n\n", l.config.Greeting)

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, l.config.UserPrompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			// EOF: end the session quietly.
			fmt.Fprintln(l.out)
			return nil
		}

		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), exitSentinel) {
			fmt.Fprintf(l.out, "\n%s\n", l.config.Farewell)
			return nil
		}

		reply, err := l.session.Exchange(ctx, line)
		if err != nil {
			if errors.Is(err, prompt.ErrEmptyInput) {
				fmt.Fprintf(l.out, "Please enter a message.\n\n")
				continue
			}

			fmt.Fprintf(l.out, "%s\n\n", userMessage(err))

			// Authentication failures will not recover within the
			// session; everything else is worth another attempt.
			if errors.Is(err, provider.ErrAuth) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		fmt.Fprintf(l.out, "%s: %s\n\n", l.config.ReplyLabel, reply)
	}
}

// userMessage converts a remote failure into a human-readable line.
func userMessage(err error) string {
	switch provider.ErrorClass(err) {
	case "auth":
		return "Error: the API credential was rejected. Check your API key."
	case "rate_limit":
		return "Error: the service is rate limiting requests. Please wait a moment and try again."
	case "context_length":
		return "Error: the conversation is too long for the model. Try a shorter message."
	case "bad_request":
		return "Error: the service rejected the request. Your message was not recorded; please rephrase."
	case "unavailable":
		return "Error: the service is temporarily unreachable. Please try again."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
