// Package reflection implements a generate/critique loop: a generator drafts a reply, a
// critic reviews it as if it were the user's own text, and the generator revises with the
// critique as new user feedback.
package reflection

import (
	"context"
	"time"

	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/hooks"
)

const (
	// DefaultMaxMessages stops the loop once the history holds more than this many turns
	// after a generation. With 3, the loop drafts, critiques once, and revises once.
	DefaultMaxMessages = 3

	DefaultGeneratePrompt = "Write a compelling LinkedIn post. Be specific. Use concrete details. Show impact."

	DefaultCritiquePrompt = "Review the LinkedIn post. Identify what makes it weak. Point out missing details, " +
		"unclear sections, and areas lacking specificity."
)

// Node names reported to AfterNode hooks.
const (
	NodeGenerate = "generate"
	NodeCritique = "critique"
	NodeEnd      = "END"
)

// Result is the outcome of a run.
type Result struct {
	// Draft is the last generated text.
	Draft string

	// Critiques lists each critique in order.
	Critiques []string

	// History is the request, every draft (assistant) and every critique (user).
	History []convo.Turn
}

// Loop alternates generation and critique over a shared history.
type Loop struct {
	model          convo.Model
	generatePrompt string
	critiquePrompt string
	maxMessages    int
	sessionOpts    []convo.SessionOption
	hooks          *hooks.Registry
}

// New creates a loop with the default prompts and [DefaultMaxMessages].
func New(model convo.Model) *Loop {
	return &Loop{
		model:          model,
		generatePrompt: DefaultGeneratePrompt,
		critiquePrompt: DefaultCritiquePrompt,
		maxMessages:    DefaultMaxMessages,
		hooks:          hooks.NewRegistry(),
	}
}

// WithGeneratePrompt sets the generator's system prompt.
func (l *Loop) WithGeneratePrompt(prompt string) *Loop {
	l.generatePrompt = prompt
	return l
}

// WithCritiquePrompt sets the critic's system prompt.
func (l *Loop) WithCritiquePrompt(prompt string) *Loop {
	l.critiquePrompt = prompt
	return l
}

// WithMaxMessages sets the history length past which the loop stops. Values below 1 are
// treated as 1, which stops after the first draft.
func (l *Loop) WithMaxMessages(n int) *Loop {
	if n < 1 {
		n = 1
	}
	l.maxMessages = n
	return l
}

// WithSessionOptions sets options (model name, temperature, streaming) applied to every
// generate and critique request. A system prompt option is overridden per node.
func (l *Loop) WithSessionOptions(opts ...convo.SessionOption) *Loop {
	l.sessionOpts = opts
	return l
}

// WithHooks replaces the hook registry.
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

// Run drafts a reply to request and refines it until the history is long enough.
// On error the Result holds the history up to the failure.
func (l *Loop) Run(ctx context.Context, request string) (*Result, error) {
	start := time.Now()
	result := &Result{History: []convo.Turn{convo.UserTurn(request)}}
	var usage convo.Usage

	l.hooks.FireBeforeRun(ctx, convo.BeforeRunEvent{
		Agent:         "reflection",
		Input:         request,
		MaxIterations: l.maxMessages,
	})

	drafts, err := l.iterate(ctx, result, &usage)

	phase := convo.PhaseDone
	if err != nil {
		phase = convo.PhaseFailed
	}
	l.hooks.FireAfterRun(ctx, convo.AfterRunEvent{
		Agent:      "reflection",
		Phase:      phase,
		Answer:     result.Draft,
		Iterations: drafts,
		Usage:      usage,
		Duration:   time.Since(start),
		Err:        err,
	})
	return result, err
}

func (l *Loop) iterate(ctx context.Context, result *Result, usage *convo.Usage) (int, error) {
	drafts := 0
	for step := 1; ; step++ {
		nodeStart := time.Now()
		draft, err := l.generate(ctx, result.History, usage)
		if err != nil {
			l.fireNode(ctx, NodeGenerate, "", "", step, nodeStart, err)
			return drafts, err
		}
		drafts++
		result.Draft = draft
		result.History = append(result.History, convo.AssistantTurn(draft))

		if len(result.History) > l.maxMessages {
			l.fireNode(ctx, NodeGenerate, NodeEnd, draft, step, nodeStart, nil)
			return drafts, nil
		}
		l.fireNode(ctx, NodeGenerate, NodeCritique, draft, step, nodeStart, nil)

		step++
		nodeStart = time.Now()
		critique, err := l.critique(ctx, result.History, usage)
		if err != nil {
			l.fireNode(ctx, NodeCritique, "", "", step, nodeStart, err)
			return drafts, err
		}
		result.Critiques = append(result.Critiques, critique)
		result.History = append(result.History, convo.UserTurn(critique))
		l.fireNode(ctx, NodeCritique, NodeGenerate, critique, step, nodeStart, nil)
	}
}

func (l *Loop) generate(ctx context.Context, history []convo.Turn, usage *convo.Usage) (string, error) {
	return l.request(ctx, l.generatePrompt, history, usage)
}

// critique shows the history to the critic with the roles after the request swapped, so
// the drafts read as user text to be reviewed and earlier critiques as the critic's own.
func (l *Loop) critique(ctx context.Context, history []convo.Turn, usage *convo.Usage) (string, error) {
	return l.request(ctx, l.critiquePrompt, SwapRoles(history), usage)
}

func (l *Loop) request(
	ctx context.Context,
	systemPrompt string,
	history []convo.Turn,
	usage *convo.Usage,
) (string, error) {
	turns := make([]convo.Turn, 0, len(history)+1)
	turns = append(turns, convo.SystemTurn(systemPrompt))
	turns = append(turns, history...)
	transcript, err := convo.NewTranscript(turns...)
	if err != nil {
		return "", err
	}

	opts := make([]convo.SessionOption, 0, len(l.sessionOpts)+1)
	opts = append(opts, l.sessionOpts...)
	opts = append(opts, convo.WithTranscript(transcript))
	session := convo.NewSession(l.model, opts...)

	reply, err := session.RequestReply(ctx)
	if err != nil {
		return "", err
	}
	usage.Merge(session.Usage())
	return reply.Text(), nil
}

func (l *Loop) fireNode(
	ctx context.Context,
	node, next, output string,
	step int,
	start time.Time,
	err error,
) {
	l.hooks.FireAfterNode(ctx, convo.AfterNodeEvent{
		Graph:    "reflection",
		Node:     node,
		Next:     next,
		Output:   output,
		Step:     step,
		Duration: time.Since(start),
		Err:      err,
	})
}

// SwapRoles keeps the first turn and exchanges user and assistant on the rest. System
// turns are unchanged.
func SwapRoles(history []convo.Turn) []convo.Turn {
	out := make([]convo.Turn, len(history))
	for i, turn := range history {
		if i == 0 {
			out[i] = turn
			continue
		}
		switch turn.Role() {
		case convo.RoleAssistant:
			out[i] = convo.UserTurn(turn.Text())
		case convo.RoleUser:
			out[i] = convo.AssistantTurn(turn.Text())
		default:
			out[i] = turn
		}
	}
	return out
}
