package prompt_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/flemzord/deskbot/internal/memory"
	"github.com/flemzord/deskbot/internal/prompt"
)

const testTemplate = "You are a support agent.\n\n{history}{input}"

func newAssembler(cfg prompt.Config) *prompt.Assembler {
	return prompt.NewAssembler(prompt.MustParseTemplate(testTemplate), nil, cfg)
}

func turns(texts ...string) []memory.Turn {
	result := make([]memory.Turn, len(texts))
	for i, text := range texts {
		if i%2 == 0 {
			result[i] = memory.UserTurn(text)
		} else {
			result[i] = memory.AssistantTurn(text)
		}
	}
	return result
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "valid", text: "intro {history} mid {input}"},
		{name: "missing history", text: "intro {input}", wantErr: prompt.ErrMissingSlot},
		{name: "missing input", text: "intro {history}", wantErr: prompt.ErrMissingSlot},
		{name: "missing both", text: "intro only", wantErr: prompt.ErrMissingSlot},
		{name: "duplicate input", text: "{history}{input}{input}", wantErr: prompt.ErrDuplicateSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := prompt.ParseTemplate(tt.text)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ParseTemplate: unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseTemplate: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssembler_EmptyHistory(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{})

	res, err := asm.Render(nil, "What are your business hours?")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}

	want := "You are a support agent.\n\nCustomer: What are your business hours?"
	if res.Payload != want {
		t.Errorf("Payload = %q, want %q", res.Payload, want)
	}
	if res.TurnsIncluded != 0 || res.TurnsDropped != 0 {
		t.Errorf("TurnsIncluded/Dropped = %d/%d, want 0/0", res.TurnsIncluded, res.TurnsDropped)
	}
}

func TestAssembler_HistoryLabels(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{})

	history := turns("Where is my order?", "It ships Monday.")
	res, err := asm.Render(history, "Can I change the address?")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}

	wantLines := []string{
		"Customer: Where is my order?",
		"Support Agent: It ships Monday.",
		"Customer: Can I change the address?",
	}
	for _, line := range wantLines {
		if !strings.Contains(res.Payload, line) {
			t.Errorf("Payload missing line %q\npayload:\n%s", line, res.Payload)
		}
	}

	// History precedes the new utterance.
	if strings.Index(res.Payload, wantLines[1]) > strings.Index(res.Payload, wantLines[2]) {
		t.Errorf("history rendered after input:\n%s", res.Payload)
	}
	if res.TurnsIncluded != 2 {
		t.Errorf("TurnsIncluded = %d, want 2", res.TurnsIncluded)
	}
}

func TestAssembler_CustomLabels(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{UserLabel: "Client", AssistantLabel: "Agent"})

	res, err := asm.Render(turns("hi", "hello"), "bye")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	if !strings.Contains(res.Payload, "Client: hi") || !strings.Contains(res.Payload, "Agent: hello") {
		t.Errorf("custom labels not applied:\n%s", res.Payload)
	}
}

func TestAssembler_Deterministic(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{})
	history := turns("a", "b", "c", "d")

	first, err := asm.Render(history, "same input")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	second, err := asm.Render(history, "same input")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	if first.Payload != second.Payload {
		t.Errorf("renders differ:\n%q\n%q", first.Payload, second.Payload)
	}
}

func TestAssembler_EmptyInput(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{})

	for _, input := range []string{"", "   ", "\t\n"} {
		if _, err := asm.Render(nil, input); !errors.Is(err, prompt.ErrEmptyInput) {
			t.Errorf("Render(%q): got %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestAssembler_TrimsInput(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{})

	res, err := asm.Render(nil, "  padded question  ")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	if !strings.Contains(res.Payload, "Customer: padded question") {
		t.Errorf("input not trimmed:\n%s", res.Payload)
	}
}

func TestAssembler_MaxTurnsCap(t *testing.T) {
	t.Parallel()

	asm := newAssembler(prompt.Config{MaxTurns: 2})
	history := turns("old question", "old answer", "new question", "new answer")

	res, err := asm.Render(history, "latest")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	if strings.Contains(res.Payload, "old question") {
		t.Errorf("payload retains turns beyond the cap:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "new question") {
		t.Errorf("payload dropped the most recent exchange:\n%s", res.Payload)
	}
	if res.TurnsIncluded != 2 || res.TurnsDropped != 2 {
		t.Errorf("TurnsIncluded/Dropped = %d/%d, want 2/2", res.TurnsIncluded, res.TurnsDropped)
	}
}

func TestAssembler_TokenBudgetDropsOldestPairs(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 400) // ~100 tokens per turn at 4 chars/token
	history := turns(long+"-0", long+"-1", long+"-2", long+"-3", "short-4", "short-5")

	asm := newAssembler(prompt.Config{
		MaxPromptTokens:  200,
		ReservedForReply: 50,
	})

	res, err := asm.Render(history, "fits")
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	if res.TurnsDropped == 0 {
		t.Fatalf("expected turns to be dropped, payload tokens = %d", res.EstimatedTokens)
	}
	// Drops happen in whole exchanges from the oldest end.
	if res.TurnsDropped%2 != 0 {
		t.Errorf("TurnsDropped = %d, want an even number", res.TurnsDropped)
	}
	if strings.Contains(res.Payload, "-0") {
		t.Errorf("oldest turn survived trimming:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "Customer: fits") {
		t.Errorf("new utterance missing from payload:\n%s", res.Payload)
	}
}

func TestCharEstimator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		charsPerToken float64
		text          string
		want          int
	}{
		{name: "empty", charsPerToken: 4, text: "", want: 0},
		{name: "rounds up", charsPerToken: 4, text: "abcdefgh", want: 3},
		{name: "default ratio", charsPerToken: 0, text: "abcd", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := prompt.NewCharEstimator(tt.charsPerToken)
			if got := e.Estimate(tt.text); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	t.Parallel()

	if _, err := prompt.ParseTemplate(prompt.DefaultTemplate); err != nil {
		t.Fatalf("DefaultTemplate does not parse: %v", err)
	}
}
