package convo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRole is returned when a turn carries a role other than system, user or
	// assistant.
	ErrInvalidRole = errors.New("convo: invalid role")

	// ErrSystemTurnOrder is returned when a system turn is appended to a non-empty transcript.
	ErrSystemTurnOrder = errors.New("convo: system turn must be the first turn")

	// ErrEmptyResponse is wrapped in a [BackendError] when the backend returns no choices.
	ErrEmptyResponse = errors.New("convo: backend returned no choices")

	// ErrIterationBudgetExceeded is returned when an agent loop uses up its iteration budget
	// without producing a final answer. It is a reported outcome rather than a crash: the
	// caller may start again with a fresh or continued transcript.
	ErrIterationBudgetExceeded = errors.New("convo: iteration budget exceeded")
)

// BackendError reports a failed call to the LLM backend (network, auth, rate limit, empty
// response). It is never retried by this package.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("convo: backend call failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// UnknownToolError reports an action directive naming a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("convo: unknown tool %q", e.Name)
}

// ToolError reports a registered tool that returned an error.
type ToolError struct {
	Name string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("convo: tool %q failed: %v", e.Name, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
