package react

import (
	"context"
	"errors"
	"time"

	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/hooks"
)

// DefaultMaxIterations is the iteration budget used when none is configured.
const DefaultMaxIterations = 10

// Dispatcher invokes tools by name. [toolbox.Registry] is the standard implementation.
type Dispatcher interface {
	// Has reports whether name is registered.
	Has(name string) bool

	// Invoke calls the named tool. It must return a [*convo.UnknownToolError] without
	// calling anything when name is not registered.
	Invoke(ctx context.Context, name, input string) (string, error)
}

// State is the bookkeeping for one run. It is created by Run and discarded when Run
// returns.
type State struct {
	Phase         convo.Phase
	Iteration     int
	MaxIterations int
}

// Result describes how a run ended. Answer is only set when Phase is [convo.PhaseDone].
type Result struct {
	Answer     string
	Phase      convo.Phase
	Iterations int
}

// Loop drives a [convo.Session] and a [Dispatcher] toward a final answer:
//
//  1. Ask the session for the next assistant reply.
//  2. Scan the reply for the first "Action: <tool>: <input>" line.
//  3. No directive: the reply is the final answer.
//  4. Otherwise invoke the tool, append "Observation: <output>" as a user turn, and repeat.
//
// Each iteration is exactly one backend round-trip. Everything runs on the caller's
// goroutine; nothing is retried.
type Loop struct {
	session       *convo.Session
	tools         Dispatcher
	maxIterations int
	hooks         *hooks.Registry
}

// NewLoop creates a loop over session and tools with [DefaultMaxIterations].
func NewLoop(session *convo.Session, tools Dispatcher) *Loop {
	return &Loop{
		session:       session,
		tools:         tools,
		maxIterations: DefaultMaxIterations,
		hooks:         hooks.NewRegistry(),
	}
}

// WithMaxIterations sets the iteration budget. Values below 1 are treated as 1.
func (l *Loop) WithMaxIterations(n int) *Loop {
	if n < 1 {
		n = 1
	}
	l.maxIterations = n
	return l
}

// WithHooks replaces the hook registry, e.g. to share one across loops.
func (l *Loop) WithHooks(h *hooks.Registry) *Loop {
	l.hooks = h
	return l
}

// RegisterHook adds a hook to the loop's registry.
func (l *Loop) RegisterHook(hook any) *Loop {
	if l.hooks == nil {
		l.hooks = hooks.NewRegistry()
	}
	l.hooks.Register(hook)
	return l
}

// Session returns the session the loop drives.
func (l *Loop) Session() *convo.Session {
	return l.session
}

// Run appends question as a user turn and iterates until a final answer, an error, or the
// iteration budget runs out.
//
// The returned Result is never nil and records the terminal phase. The error is:
//   - nil when Phase is Done
//   - [convo.ErrIterationBudgetExceeded] when Phase is Aborted
//   - a [*convo.BackendError], [*convo.UnknownToolError], [*convo.ToolError] or context
//     error when Phase is Failed
func (l *Loop) Run(ctx context.Context, question string) (*Result, error) {
	state := &State{
		Phase:         convo.PhaseAwaitingReply,
		MaxIterations: l.maxIterations,
	}
	start := time.Now()

	if err := l.session.Append(convo.UserTurn(question)); err != nil {
		state.Phase = convo.PhaseFailed
		return l.result(state, ""), err
	}

	l.hooks.FireBeforeRun(ctx, convo.BeforeRunEvent{
		Agent:         "react",
		Input:         question,
		MaxIterations: state.MaxIterations,
	})

	answer, err := l.iterate(ctx, state)

	l.hooks.FireAfterRun(ctx, convo.AfterRunEvent{
		Agent:      "react",
		Phase:      state.Phase,
		Answer:     answer,
		Iterations: state.Iteration,
		Usage:      l.session.Usage(),
		Duration:   time.Since(start),
		Err:        err,
	})

	return l.result(state, answer), err
}

func (l *Loop) iterate(ctx context.Context, state *State) (string, error) {
	for state.Iteration < state.MaxIterations {
		if err := ctx.Err(); err != nil {
			state.Phase = convo.PhaseFailed
			return "", err
		}

		state.Iteration++
		state.Phase = convo.PhaseAwaitingReply
		l.hooks.FireBeforeIteration(ctx, convo.BeforeIterationEvent{Iteration: state.Iteration})

		replyStart := time.Now()
		reply, err := l.session.RequestReply(ctx)
		l.hooks.FireAfterReply(ctx, convo.AfterReplyEvent{
			Iteration: state.Iteration,
			Reply:     reply,
			Duration:  time.Since(replyStart),
			Err:       err,
		})
		if err != nil {
			state.Phase = convo.PhaseFailed
			return "", err
		}
		state.Phase = convo.PhaseHasReply

		directive, ok := ParseDirective(reply.Text())
		if !ok {
			state.Phase = convo.PhaseDone
			return reply.Text(), nil
		}

		if !l.tools.Has(directive.ToolName) {
			state.Phase = convo.PhaseFailed
			return "", &convo.UnknownToolError{Name: directive.ToolName}
		}

		state.Phase = convo.PhaseDispatching
		observation, err := l.dispatch(ctx, state.Iteration, directive)
		if err != nil {
			state.Phase = convo.PhaseFailed
			return "", err
		}

		if err := l.session.Append(convo.UserTurn(ObservationPrefix + observation)); err != nil {
			state.Phase = convo.PhaseFailed
			return "", err
		}
	}

	state.Phase = convo.PhaseAborted
	return "", convo.ErrIterationBudgetExceeded
}

func (l *Loop) dispatch(ctx context.Context, iteration int, d Directive) (string, error) {
	l.hooks.FireBeforeToolCall(ctx, convo.BeforeToolCallEvent{
		Iteration: iteration,
		ToolName:  d.ToolName,
		Input:     d.ToolInput,
	})

	start := time.Now()
	output, err := l.tools.Invoke(ctx, d.ToolName, d.ToolInput)

	l.hooks.FireAfterToolCall(ctx, convo.AfterToolCallEvent{
		Iteration: iteration,
		ToolName:  d.ToolName,
		Input:     d.ToolInput,
		Output:    output,
		Duration:  time.Since(start),
		Err:       err,
	})
	return output, err
}

func (l *Loop) result(state *State, answer string) *Result {
	return &Result{
		Answer:     answer,
		Phase:      state.Phase,
		Iterations: state.Iteration,
	}
}

// IsUnknownTool reports whether err is (or wraps) an unknown tool error, returning the tool
// name.
func IsUnknownTool(err error) (string, bool) {
	var unknown *convo.UnknownToolError
	if errors.As(err, &unknown) {
		return unknown.Name, true
	}
	return "", false
}
