package convo

import (
	"context"
)

// Tool is a named, synchronous function the agent can invoke by emitting an action
// directive. Input and output are plain text: the input is whatever follows the tool name on
// the directive line, and the output is fed back to the model as an observation.
//
// Tools should be deterministic or idempotent; the agent loop never retries them.
type Tool interface {
	// Name returns the identifier used in action directives. It must be a bare word
	// (letters, digits, underscore).
	Name() string

	// Description tells the model what the tool does and what input it expects.
	Description() string

	// Call executes the tool.
	Call(ctx context.Context, input string) (string, error)
}

// ToolFunc adapts a function into a [Tool].
type ToolFunc struct {
	name        string
	description string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewToolFunc creates a Tool from a function.
func NewToolFunc(
	name, description string,
	fn func(ctx context.Context, input string) (string, error),
) *ToolFunc {
	return &ToolFunc{
		name:        name,
		description: description,
		fn:          fn,
	}
}

// NewLookupTool creates a Tool from a total string function, the shape of simple table
// lookups that cannot fail.
func NewLookupTool(name, description string, fn func(input string) string) *ToolFunc {
	return NewToolFunc(name, description, func(_ context.Context, input string) (string, error) {
		return fn(input), nil
	})
}

// Name returns the tool's identifier.
func (t *ToolFunc) Name() string {
	return t.name
}

// Description returns a human-readable description for the LLM.
func (t *ToolFunc) Description() string {
	return t.description
}

// Call executes the tool function with the given input.
func (t *ToolFunc) Call(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

var _ Tool = (*ToolFunc)(nil)
