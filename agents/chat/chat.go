// Package chat provides plain conversational use of a model: one-shot completion, an
// in-memory multi-turn chat, and thread-keyed chats persisted through a checkpoint store.
package chat

import (
	"context"

	"github.com/rickchristie/convo"
)

// Complete sends prompt as the only user turn of a fresh session and returns the reply
// text.
func Complete(
	ctx context.Context,
	model convo.Model,
	prompt string,
	opts ...convo.SessionOption,
) (string, error) {
	reply, err := convo.NewSession(model, opts...).Ask(ctx, prompt)
	if err != nil {
		return "", err
	}
	return reply.Text(), nil
}

// Chat is a multi-turn conversation held in memory. Every Send sees all earlier turns.
type Chat struct {
	session *convo.Session
}

// New creates a chat. Use convo.WithSystemPrompt to give it a persona.
func New(model convo.Model, opts ...convo.SessionOption) *Chat {
	return &Chat{session: convo.NewSession(model, opts...)}
}

// Send appends text as a user turn and returns the assistant's reply.
func (c *Chat) Send(ctx context.Context, text string) (string, error) {
	reply, err := c.session.Ask(ctx, text)
	if err != nil {
		return "", err
	}
	return reply.Text(), nil
}

// Transcript returns a copy of the turns so far.
func (c *Chat) Transcript() []convo.Turn {
	return c.session.Transcript()
}

// Usage returns the token usage of the chat so far.
func (c *Chat) Usage() convo.Usage {
	return c.session.Usage()
}
