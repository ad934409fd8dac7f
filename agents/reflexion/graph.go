// Package reflexion implements a research-backed essay writer: it outlines a topic,
// researches it, writes a draft, then repeatedly critiques the draft, researches the gaps
// and rewrites until the revision budget is spent.
//
// Every node's output is checkpointed by thread ID, so a thread can be inspected with
// GetState or continued after a failure with Resume.
package reflexion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/checkpoint"
	"github.com/rickchristie/convo/hooks"
	"github.com/rickchristie/convo/search"
)

const (
	// DefaultTotalIterations is the number of drafts written when the input sets none.
	DefaultTotalIterations = 2

	// DefaultResultsPerQuery is how many search hits each query contributes to the sources.
	DefaultResultsPerQuery = 2
)

// ErrUnknownNode is returned when a checkpoint names a node the graph does not have.
var ErrUnknownNode = errors.New("reflexion: unknown node")

// Graph runs the writer over a model, a searcher and a checkpoint store.
type Graph struct {
	model           convo.Model
	searcher        search.Searcher
	store           checkpoint.Store
	resultsPerQuery int
	sessionOpts     []convo.SessionOption
	hooks           *hooks.Registry
}

// New creates a graph. A nil store keeps checkpoints in memory.
func New(model convo.Model, searcher search.Searcher, store checkpoint.Store) *Graph {
	if store == nil {
		store = checkpoint.NewMemoryStore()
	}
	return &Graph{
		model:           model,
		searcher:        searcher,
		store:           store,
		resultsPerQuery: DefaultResultsPerQuery,
		hooks:           hooks.NewRegistry(),
	}
}

// WithResultsPerQuery sets how many search hits each query adds. Values below 1 are
// treated as 1.
func (g *Graph) WithResultsPerQuery(n int) *Graph {
	if n < 1 {
		n = 1
	}
	g.resultsPerQuery = n
	return g
}

// WithSessionOptions sets options (model name, temperature) applied to every model request.
func (g *Graph) WithSessionOptions(opts ...convo.SessionOption) *Graph {
	g.sessionOpts = opts
	return g
}

// WithHooks replaces the hook registry.
func (g *Graph) WithHooks(h *hooks.Registry) *Graph {
	g.hooks = h
	return g
}

// RegisterHook adds a hook to the graph's registry.
func (g *Graph) RegisterHook(hook any) *Graph {
	if g.hooks == nil {
		g.hooks = hooks.NewRegistry()
	}
	g.hooks.Register(hook)
	return g
}

// Run starts a new run of input on threadID, generating a thread ID when empty. Iteration
// defaults to 1 and TotalIterations to [DefaultTotalIterations].
//
// The returned snapshot is the last one saved; it is nil only when no node completed.
func (g *Graph) Run(ctx context.Context, threadID string, input State) (*Snapshot, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	input.applyDefaults()
	return g.execute(ctx, threadID, input, NodePlan)
}

// Resume continues threadID from the node after its latest checkpoint. A finished thread is
// returned unchanged.
func (g *Graph) Resume(ctx context.Context, threadID string) (*Snapshot, error) {
	snap, ok, err := g.GetState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reflexion: thread %q has no checkpoints", threadID)
	}
	if snap.Done() {
		return snap, nil
	}
	return g.execute(ctx, threadID, snap.State, snap.Next)
}

// GetState returns the latest snapshot of threadID.
func (g *Graph) GetState(ctx context.Context, threadID string) (*Snapshot, bool, error) {
	cp, ok, err := g.store.Latest(ctx, threadID)
	if err != nil || !ok {
		return nil, ok, err
	}
	snap, err := decodeSnapshot(cp)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// History returns every snapshot of threadID in step order.
func (g *Graph) History(ctx context.Context, threadID string) ([]*Snapshot, error) {
	cps, err := g.store.List(ctx, threadID)
	if err != nil {
		return nil, err
	}
	out := make([]*Snapshot, 0, len(cps))
	for _, cp := range cps {
		snap, err := decodeSnapshot(cp)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (g *Graph) execute(ctx context.Context, threadID string, state State, node string) (*Snapshot, error) {
	start := time.Now()
	var (
		usage convo.Usage
		last  *Snapshot
	)

	g.hooks.FireBeforeRun(ctx, convo.BeforeRunEvent{
		Agent:         "reflexion",
		Input:         state.Topic,
		MaxIterations: state.TotalIterations,
	})

	err := func() error {
		for node != NodeEnd {
			if err := ctx.Err(); err != nil {
				return err
			}

			nodeStart := time.Now()
			next, err := g.runNode(ctx, node, &state, &usage)
			if err != nil {
				g.fireNode(ctx, threadID, node, "", "", 0, nodeStart, err)
				return err
			}

			snap, err := g.save(ctx, threadID, node, next, state)
			if err != nil {
				return err
			}
			last = snap
			g.fireNode(ctx, threadID, node, next, nodeOutput(node, state), snap.Step, nodeStart, nil)
			node = next
		}
		return nil
	}()

	phase := convo.PhaseDone
	if err != nil {
		phase = convo.PhaseFailed
	}
	g.hooks.FireAfterRun(ctx, convo.AfterRunEvent{
		Agent:      "reflexion",
		Phase:      phase,
		Answer:     state.Output,
		Iterations: state.Iteration - 1,
		Usage:      usage,
		Duration:   time.Since(start),
		Err:        err,
	})
	return last, err
}

func (g *Graph) runNode(ctx context.Context, node string, state *State, usage *convo.Usage) (string, error) {
	switch node {
	case NodePlan:
		outline, err := g.ask(ctx, PlanPrompt, state.Topic, usage)
		if err != nil {
			return "", err
		}
		state.Outline = outline
		return NodeResearchPlan, nil

	case NodeResearchPlan:
		if err := g.research(ctx, ResearchPrompt, state.Topic, state, usage); err != nil {
			return "", err
		}
		return NodeWrite, nil

	case NodeWrite:
		system := fmt.Sprintf(WriterPrompt, strings.Join(state.Sources, "\n\n"))
		essay, err := g.ask(ctx, system, state.Topic+"\n\nOutline:\n"+state.Outline, usage)
		if err != nil {
			return "", err
		}
		state.Output = essay
		state.Iteration++
		return state.afterWrite(), nil

	case NodeReview:
		feedback, err := g.ask(ctx, ReviewPrompt, state.Output, usage)
		if err != nil {
			return "", err
		}
		state.Feedback = feedback
		return NodeResearchCritique, nil

	case NodeResearchCritique:
		if err := g.research(ctx, ResearchCritiquePrompt, state.Feedback, state, usage); err != nil {
			return "", err
		}
		return NodeWrite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNode, node)
}

// research asks for structured queries and appends the content of each query's hits to the
// state's sources.
func (g *Graph) research(
	ctx context.Context,
	prompt, input string,
	state *State,
	usage *convo.Usage,
) error {
	system := prompt + fmt.Sprintf(jsonInstruction, QueriesSchema().String())
	reply, err := g.ask(ctx, system, input, usage)
	if err != nil {
		return err
	}
	queries, err := ParseQueries(reply)
	if err != nil {
		return err
	}

	for _, q := range queries.Queries {
		results, err := g.searcher.Search(ctx, q, g.resultsPerQuery)
		if err != nil {
			return fmt.Errorf("reflexion: search %q: %w", q, err)
		}
		for _, r := range results {
			state.Sources = append(state.Sources, r.Content)
		}
	}
	return nil
}

func (g *Graph) ask(ctx context.Context, system, user string, usage *convo.Usage) (string, error) {
	opts := make([]convo.SessionOption, 0, len(g.sessionOpts)+1)
	opts = append(opts, g.sessionOpts...)
	opts = append(opts, convo.WithSystemPrompt(system))
	session := convo.NewSession(g.model, opts...)

	reply, err := session.Ask(ctx, user)
	if err != nil {
		return "", err
	}
	usage.Merge(session.Usage())
	return reply.Text(), nil
}

func (g *Graph) save(ctx context.Context, threadID, node, next string, state State) (*Snapshot, error) {
	payload, err := checkpoint.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("reflexion: encode state: %w", err)
	}
	cp := &checkpoint.Checkpoint{
		ThreadID: threadID,
		Node:     node,
		Next:     next,
		Payload:  payload,
	}
	if err := g.store.Put(ctx, cp); err != nil {
		return nil, fmt.Errorf("reflexion: save checkpoint: %w", err)
	}
	return &Snapshot{
		ThreadID: threadID,
		State:    state,
		Node:     node,
		Next:     next,
		Step:     cp.Step,
	}, nil
}

func (g *Graph) fireNode(
	ctx context.Context,
	threadID, node, next, output string,
	step int,
	start time.Time,
	err error,
) {
	g.hooks.FireAfterNode(ctx, convo.AfterNodeEvent{
		Graph:    "reflexion",
		ThreadID: threadID,
		Node:     node,
		Next:     next,
		Output:   output,
		Step:     step,
		Duration: time.Since(start),
		Err:      err,
	})
}

func decodeSnapshot(cp *checkpoint.Checkpoint) (*Snapshot, error) {
	var state State
	if err := checkpoint.Decode(cp.Payload, &state); err != nil {
		return nil, fmt.Errorf("reflexion: decode step %d of %q: %w", cp.Step, cp.ThreadID, err)
	}
	return &Snapshot{
		ThreadID: cp.ThreadID,
		State:    state,
		Node:     cp.Node,
		Next:     cp.Next,
		Step:     cp.Step,
	}, nil
}

// nodeOutput is the part of the state a node produced, for hooks.
func nodeOutput(node string, state State) string {
	switch node {
	case NodePlan:
		return state.Outline
	case NodeWrite:
		return state.Output
	case NodeReview:
		return state.Feedback
	case NodeResearchPlan, NodeResearchCritique:
		return fmt.Sprintf("%d sources", len(state.Sources))
	}
	return ""
}
