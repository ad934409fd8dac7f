package convo

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe a run without being able to change it. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry (or directly via the agent's RegisterHook)
//
// Example:
//
//	type ToolTimer struct{}
//
//	func (ToolTimer) OnAfterToolCall(ctx context.Context, e convo.AfterToolCallEvent) {
//	    fmt.Printf("%s took %v\n", e.ToolName, e.Duration)
//	}
//
//	loop := react.NewLoop(session, tools).RegisterHook(ToolTimer{})
//
// Hooks are called synchronously in registration order. A paired After hook is always called
// when its Before hook was. Hooks must not block for long: the run waits for them.
// -----------------------------------------------------------------------------

// BeforeRunHook is notified once when a run starts.
type BeforeRunHook interface {
	OnBeforeRun(ctx context.Context, event BeforeRunEvent)
}

// AfterRunHook is notified once when a run ends, whatever the outcome.
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, event AfterRunEvent)
}

// BeforeIterationHook is notified at the start of every iteration.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, event BeforeIterationEvent)
}

// AfterReplyHook is notified after every backend round-trip, including failed ones.
type AfterReplyHook interface {
	OnAfterReply(ctx context.Context, event AfterReplyEvent)
}

// BeforeToolCallHook is notified before a parsed action is dispatched.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, event BeforeToolCallEvent)
}

// AfterToolCallHook is notified after a dispatch, including failed ones.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}

// AfterNodeHook is notified when a step of a multi-stage graph (reflection, reflexion)
// completes.
type AfterNodeHook interface {
	OnAfterNode(ctx context.Context, event AfterNodeEvent)
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// BeforeRunEvent is passed to [BeforeRunHook].
type BeforeRunEvent struct {
	Agent         string
	Input         string
	MaxIterations int
}

// AfterRunEvent is passed to [AfterRunHook].
type AfterRunEvent struct {
	Agent      string
	Phase      Phase
	Answer     string
	Iterations int
	Usage      Usage
	Duration   time.Duration
	Err        error
}

// BeforeIterationEvent is passed to [BeforeIterationHook].
type BeforeIterationEvent struct {
	Iteration int
}

// AfterReplyEvent is passed to [AfterReplyHook].
type AfterReplyEvent struct {
	Iteration int
	Reply     Turn
	Duration  time.Duration
	Err       error
}

// BeforeToolCallEvent is passed to [BeforeToolCallHook].
type BeforeToolCallEvent struct {
	Iteration int
	ToolName  string
	Input     string
}

// AfterToolCallEvent is passed to [AfterToolCallHook].
type AfterToolCallEvent struct {
	Iteration int
	ToolName  string
	Input     string
	Output    string
	Duration  time.Duration
	Err       error
}

// AfterNodeEvent is passed to [AfterNodeHook].
type AfterNodeEvent struct {
	Graph    string
	ThreadID string
	Node     string
	Next     string
	Output   string
	Step     int
	Duration time.Duration
	Err      error
}
