package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/deskbot/internal/chat"
	"github.com/flemzord/deskbot/internal/memory"
	"github.com/flemzord/deskbot/internal/prompt"
	"github.com/flemzord/deskbot/internal/provider"
	"github.com/flemzord/deskbot/internal/provider/providertest"
)

const sessionTemplate = "Be helpful.\n\n{history}{input}"

// fakeRecorder counts metric calls for assertions.
type fakeRecorder struct {
	mu        sync.Mutex
	exchanges int
	errors    map[string]int
}

func (r *fakeRecorder) RecordExchange(provider.TokenUsage, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges++
}

func (r *fakeRecorder) RecordError(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errors == nil {
		r.errors = make(map[string]int)
	}
	r.errors[class]++
}

func newSession(p provider.Provider, rec chat.Recorder) *chat.Session {
	asm := prompt.NewAssembler(prompt.MustParseTemplate(sessionTemplate), nil, prompt.Config{})
	retrier := provider.NewRetrier(provider.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
	}, nil)
	return chat.NewSession(memory.NewBuffer(100), asm, p, retrier, rec, nil, chat.SessionConfig{})
}

func echoProvider() *providertest.MockProvider {
	return &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{
				Content: "echo",
				Usage:   provider.TokenUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
			}, nil
		},
	}
}

func TestSession_ExchangeRecordsAlternatingHistory(t *testing.T) {
	t.Parallel()

	mock := echoProvider()
	sess := newSession(mock, nil)

	const n = 4
	for i := 0; i < n; i++ {
		reply, err := sess.Exchange(context.Background(), fmt.Sprintf("question %d", i))
		if err != nil {
			t.Fatalf("Exchange(%d): unexpected error: %v", i, err)
		}
		if reply != "echo" {
			t.Errorf("Exchange(%d) = %q, want echo", i, reply)
		}
	}

	history := sess.History()
	if len(history) != 2*n {
		t.Fatalf("history length = %d, want %d", len(history), 2*n)
	}
	for i, turn := range history {
		want := memory.SpeakerUser
		if i%2 == 1 {
			want = memory.SpeakerAssistant
		}
		if turn.Speaker != want {
			t.Errorf("history[%d].Speaker = %q, want %q", i, turn.Speaker, want)
		}
	}
	if mock.Calls() != n {
		t.Errorf("provider calls = %d, want %d", mock.Calls(), n)
	}
}

func TestSession_HistoryFlowsIntoLaterPrompts(t *testing.T) {
	t.Parallel()

	mock := echoProvider()
	sess := newSession(mock, nil)

	if _, err := sess.Exchange(context.Background(), "first question"); err != nil {
		t.Fatalf("Exchange: unexpected error: %v", err)
	}
	if _, err := sess.Exchange(context.Background(), "second question"); err != nil {
		t.Fatalf("Exchange: unexpected error: %v", err)
	}

	if len(mock.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(mock.Prompts))
	}
	if strings.Contains(mock.Prompts[0], "Support Agent:") {
		t.Errorf("first prompt should carry no history:\n%s", mock.Prompts[0])
	}
	if !strings.Contains(mock.Prompts[1], "Customer: first question") {
		t.Errorf("second prompt missing prior user turn:\n%s", mock.Prompts[1])
	}
	if !strings.Contains(mock.Prompts[1], "Support Agent: echo") {
		t.Errorf("second prompt missing prior assistant turn:\n%s", mock.Prompts[1])
	}
}

func TestSession_FailureLeavesBufferIntact(t *testing.T) {
	t.Parallel()

	calls := 0
	mock := &providertest.MockProvider{
		CompleteFunc: func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return provider.CompletionResponse{Content: "answered"}, nil
			}
			return provider.CompletionResponse{}, fmt.Errorf("%w: bad field", provider.ErrBadRequest)
		},
	}
	rec := &fakeRecorder{}
	sess := newSession(mock, rec)

	if _, err := sess.Exchange(context.Background(), "works"); err != nil {
		t.Fatalf("Exchange: unexpected error: %v", err)
	}

	_, err := sess.Exchange(context.Background(), "fails")
	if !errors.Is(err, provider.ErrBadRequest) {
		t.Fatalf("Exchange: got %v, want ErrBadRequest", err)
	}

	// Turns 1..k-1 retained; no orphan user turn for the failed attempt.
	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Text != "works" || history[1].Text != "answered" {
		t.Errorf("history = %q/%q, want works/answered", history[0].Text, history[1].Text)
	}
	if rec.errors["bad_request"] != 1 {
		t.Errorf("recorded bad_request errors = %d, want 1", rec.errors["bad_request"])
	}
	if rec.exchanges != 1 {
		t.Errorf("recorded exchanges = %d, want 1", rec.exchanges)
	}
}

func TestSession_EmptyInputNoCallNoAppend(t *testing.T) {
	t.Parallel()

	mock := echoProvider()
	sess := newSession(mock, nil)

	for _, input := range []string{"", "   ", "\t"} {
		_, err := sess.Exchange(context.Background(), input)
		if !errors.Is(err, prompt.ErrEmptyInput) {
			t.Fatalf("Exchange(%q): got %v, want ErrEmptyInput", input, err)
		}
	}

	if mock.Calls() != 0 {
		t.Errorf("provider calls = %d, want 0", mock.Calls())
	}
	if sess.Turns() != 0 {
		t.Errorf("turns = %d, want 0", sess.Turns())
	}
}

func TestSession_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	mock := &providertest.MockProvider{
		CompleteFunc: func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
			calls++
			if calls < 3 {
				return provider.CompletionResponse{}, fmt.Errorf("%w: flaky", provider.ErrUnavailable)
			}
			return provider.CompletionResponse{Content: "finally"}, nil
		},
	}
	sess := newSession(mock, nil)

	reply, err := sess.Exchange(context.Background(), "please")
	if err != nil {
		t.Fatalf("Exchange: unexpected error: %v", err)
	}
	if reply != "finally" {
		t.Errorf("reply = %q, want finally", reply)
	}
	if calls != 3 {
		t.Errorf("provider calls = %d, want 3", calls)
	}
	if sess.Turns() != 2 {
		t.Errorf("turns = %d, want 2", sess.Turns())
	}
}

func TestSession_StoresTrimmedInput(t *testing.T) {
	t.Parallel()

	mock := echoProvider()
	sess := newSession(mock, nil)

	if _, err := sess.Exchange(context.Background(), "  padded  "); err != nil {
		t.Fatalf("Exchange: unexpected error: %v", err)
	}

	history := sess.History()
	if history[0].Text != "padded" {
		t.Errorf("stored user turn = %q, want %q", history[0].Text, "padded")
	}
}
