package memory

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultMaxTurns bounds the buffer when no explicit cap is configured.
const DefaultMaxTurns = 100

// Sentinel errors for buffer operations.
var (
	// ErrSpeakerOrder indicates an exchange whose turns are not a
	// user turn followed by an assistant turn.
	ErrSpeakerOrder = errors.New("memory: exchange must be a user turn followed by an assistant turn")
)

// Buffer is an ordered, append-only record of the turns exchanged in a
// single conversation session. It lives for the session only; a process
// restart yields an empty buffer by design.
//
// The only write path is AppendExchange, which records a completed
// user/assistant pair under one lock. A user turn therefore never lands
// without its assistant counterpart, and a failed remote call leaves the
// buffer untouched.
//
// Buffer is safe for concurrent use. Each session must own its buffer
// exclusively; buffers are never shared across sessions.
type Buffer struct {
	mu       sync.RWMutex
	maxTurns int
	turns    []Turn
}

// NewBuffer creates an empty buffer bounded to maxTurns retained turns.
// A maxTurns <= 0 selects DefaultMaxTurns. Odd values are rounded up so
// the bound always holds whole exchanges.
func NewBuffer(maxTurns int) *Buffer {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxTurns%2 != 0 {
		maxTurns++
	}
	return &Buffer{maxTurns: maxTurns}
}

// AppendExchange records a completed exchange: the user turn and the
// assistant turn that answered it, in that order. When the buffer would
// exceed its cap, the oldest exchange is evicted first.
func (b *Buffer) AppendExchange(user, assistant Turn) error {
	if user.Speaker != SpeakerUser || assistant.Speaker != SpeakerAssistant {
		return fmt.Errorf("%w: got %s/%s", ErrSpeakerOrder, user.Speaker, assistant.Speaker)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, user, assistant)
	if len(b.turns) > b.maxTurns {
		evict := len(b.turns) - b.maxTurns
		b.turns = append(b.turns[:0:0], b.turns[evict:]...)
	}
	return nil
}

// Snapshot returns a point-in-time copy of all retained turns in
// chronological order. The returned slice is never a live handle, so a
// render sees a consistent history regardless of later appends.
func (b *Buffer) Snapshot() []Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.turns) == 0 {
		return nil
	}
	result := make([]Turn, len(b.turns))
	copy(result, b.turns)
	return result
}

// Len returns the number of retained turns.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.turns)
}

// MaxTurns returns the configured retention bound.
func (b *Buffer) MaxTurns() int {
	return b.maxTurns
}

// Reset discards all retained turns.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
}
