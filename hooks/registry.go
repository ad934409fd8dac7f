package hooks

import (
	"context"

	"github.com/rickchristie/convo"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// Hooks can implement any combination of the hook interfaces in package convo; each hook
// only receives the events for the interfaces it implements.
//
//	registry := hooks.NewRegistry().
//	    Register(loggers.NewZerologHook(log.Logger)).
//	    Register(loggers.NewPrinter(os.Stdout))
//
//	loop := react.NewLoop(session, tools).WithHooks(registry)
//
// Registry is NOT thread-safe. Register all hooks before starting a run.
// A nil *Registry is valid and dispatches nothing.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook. Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hooks)
}

// FireBeforeRun dispatches to all BeforeRunHook implementations.
func (r *Registry) FireBeforeRun(ctx context.Context, event convo.BeforeRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.BeforeRunHook); ok {
			hook.OnBeforeRun(ctx, event)
		}
	}
}

// FireAfterRun dispatches to all AfterRunHook implementations.
func (r *Registry) FireAfterRun(ctx context.Context, event convo.AfterRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.AfterRunHook); ok {
			hook.OnAfterRun(ctx, event)
		}
	}
}

// FireBeforeIteration dispatches to all BeforeIterationHook implementations.
func (r *Registry) FireBeforeIteration(ctx context.Context, event convo.BeforeIterationEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, event)
		}
	}
}

// FireAfterReply dispatches to all AfterReplyHook implementations.
func (r *Registry) FireAfterReply(ctx context.Context, event convo.AfterReplyEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.AfterReplyHook); ok {
			hook.OnAfterReply(ctx, event)
		}
	}
}

// FireBeforeToolCall dispatches to all BeforeToolCallHook implementations.
func (r *Registry) FireBeforeToolCall(ctx context.Context, event convo.BeforeToolCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, event)
		}
	}
}

// FireAfterToolCall dispatches to all AfterToolCallHook implementations.
func (r *Registry) FireAfterToolCall(ctx context.Context, event convo.AfterToolCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, event)
		}
	}
}

// FireAfterNode dispatches to all AfterNodeHook implementations.
func (r *Registry) FireAfterNode(ctx context.Context, event convo.AfterNodeEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(convo.AfterNodeHook); ok {
			hook.OnAfterNode(ctx, event)
		}
	}
}
