package prompt

import (
	"errors"
	"strings"

	"github.com/flemzord/deskbot/internal/memory"
)

// ErrEmptyInput indicates the user utterance was empty after trimming.
// Empty input is rejected locally; no completion request is issued.
var ErrEmptyInput = errors.New("prompt: empty input")

// Config controls history serialization and payload bounding.
type Config struct {
	// UserLabel prefixes user turns in the serialized history.
	UserLabel string

	// AssistantLabel prefixes assistant turns in the serialized history.
	AssistantLabel string

	// MaxTurns caps how many of the most recent turns are rendered.
	// 0 renders the full snapshot.
	MaxTurns int

	// MaxPromptTokens bounds the estimated size of the rendered payload.
	// 0 disables the bound.
	MaxPromptTokens int

	// ReservedForReply is subtracted from MaxPromptTokens so the model
	// has room to answer. Default: 512.
	ReservedForReply int
}

// withDefaults fills zero-valued fields with sensible defaults.
func (c Config) withDefaults() Config {
	if c.UserLabel == "" {
		c.UserLabel = "Customer"
	}
	if c.AssistantLabel == "" {
		c.AssistantLabel = "Support Agent"
	}
	if c.ReservedForReply <= 0 {
		c.ReservedForReply = 512
	}
	return c
}

// Result is the output of a render.
type Result struct {
	// Payload is the fully rendered text sent to the completion service.
	Payload string

	// TurnsIncluded is the number of history turns rendered.
	TurnsIncluded int

	// TurnsDropped is the number of history turns omitted to satisfy
	// the turn cap or the token budget.
	TurnsDropped int

	// EstimatedTokens is the estimated token count of the payload.
	EstimatedTokens int
}

// Assembler renders a completion payload from the instruction template,
// a history snapshot, and the newest user utterance.
//
// Rendering is pure: the same snapshot and utterance always produce an
// identical payload. When the rendered history would exceed the token
// budget, the oldest exchange pairs are dropped first.
type Assembler struct {
	tpl       Template
	estimator TokenEstimator
	config    Config
}

// NewAssembler creates an Assembler with the given template, estimator,
// and config.
func NewAssembler(tpl Template, estimator TokenEstimator, cfg Config) *Assembler {
	if estimator == nil {
		estimator = NewCharEstimator(0)
	}
	return &Assembler{
		tpl:       tpl,
		estimator: estimator,
		config:    cfg.withDefaults(),
	}
}

// Render assembles the payload for one exchange.
//
// The input is trimmed; an empty result returns ErrEmptyInput before any
// rendering happens. History turns are serialized oldest-first with
// per-speaker label prefixes, then the new utterance is placed in the
// input slot with the user label.
func (a *Assembler) Render(history []memory.Turn, input string) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, ErrEmptyInput
	}

	start := 0
	if a.config.MaxTurns > 0 && len(history) > a.config.MaxTurns {
		start = trimToPair(len(history) - a.config.MaxTurns)
	}

	payload := a.render(history[start:], input)

	// Drop oldest exchange pairs until the payload fits the budget.
	if budget := a.tokenBudget(); budget > 0 {
		for a.estimator.Estimate(payload) > budget && start < len(history) {
			start = trimToPair(start + 2)
			payload = a.render(history[start:], input)
		}
	}

	return Result{
		Payload:         payload,
		TurnsIncluded:   len(history) - start,
		TurnsDropped:    start,
		EstimatedTokens: a.estimator.Estimate(payload),
	}, nil
}

// render produces the payload for the given history window.
func (a *Assembler) render(history []memory.Turn, input string) string {
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(a.label(turn.Speaker))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return a.tpl.render(b.String(), a.config.UserLabel+": "+input)
}

func (a *Assembler) label(s memory.Speaker) string {
	if s == memory.SpeakerAssistant {
		return a.config.AssistantLabel
	}
	return a.config.UserLabel
}

// tokenBudget returns the usable payload budget, or 0 when unbounded.
func (a *Assembler) tokenBudget() int {
	if a.config.MaxPromptTokens <= 0 {
		return 0
	}
	budget := a.config.MaxPromptTokens - a.config.ReservedForReply
	if budget <= 0 {
		// Reserved swallows the whole window; history gets no budget
		// but the new utterance is always rendered.
		return 1
	}
	return budget
}

// trimToPair rounds a drop offset up to an exchange boundary so the
// rendered window always starts with a user turn.
func trimToPair(n int) int {
	if n%2 != 0 {
		n++
	}
	return n
}
