// Package memory provides the bounded, session-scoped conversation
// history buffer that feeds prompt assembly.
package memory

import "time"

// Speaker identifies who produced a turn.
type Speaker string

// Speaker constants for conversation turns.
const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is a single utterance in a conversation. Turns are immutable
// once recorded.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// UserTurn creates a user turn stamped with the current time.
func UserTurn(text string) Turn {
	return Turn{Speaker: SpeakerUser, Text: text, At: time.Now()}
}

// AssistantTurn creates an assistant turn stamped with the current time.
func AssistantTurn(text string) Turn {
	return Turn{Speaker: SpeakerAssistant, Text: text, At: time.Now()}
}
