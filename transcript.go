package convo

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Transcript is the ordered history of turns exchanged with the backend.
//
// Invariants:
//   - every turn has a valid role
//   - a system turn, if present, is the first turn and there is at most one
//
// Turns are only ever appended. A Transcript is owned by a single [Session] and is not safe
// for concurrent use.
type Transcript struct {
	turns []Turn
}

// NewTranscript builds a transcript from the given turns, validating each as if appended in
// order. Use it to restore a persisted conversation.
func NewTranscript(turns ...Turn) (*Transcript, error) {
	t := &Transcript{turns: make([]Turn, 0, len(turns))}
	for i, turn := range turns {
		if err := t.Append(turn); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return t, nil
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(turn Turn) error {
	if !turn.Role().Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, turn.Role())
	}
	if turn.Role() == RoleSystem && len(t.turns) > 0 {
		return ErrSystemTurnOrder
	}
	t.turns = append(t.turns, turn)
	return nil
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the turns in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Last returns the most recent turn, or false when the transcript is empty.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// HasSystem reports whether the transcript starts with a system turn.
func (t *Transcript) HasSystem() bool {
	return len(t.turns) > 0 && t.turns[0].Role() == RoleSystem
}

// Messages converts the transcript into the message list sent to the backend.
func (t *Transcript) Messages() []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(t.turns))
	for _, turn := range t.turns {
		messages = append(messages, turn.MessageContent())
	}
	return messages
}
