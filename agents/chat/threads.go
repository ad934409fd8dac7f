package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/checkpoint"
)

// NodeAgent is the node name recorded on chat checkpoints.
const NodeAgent = "agent"

// snapshot is the checkpoint payload of a chat thread.
type snapshot struct {
	Turns []convo.Turn `yaml:"turns"`
}

// ThreadState is the saved state of one thread.
type ThreadState struct {
	ThreadID  string
	Turns     []convo.Turn
	Step      int
	UpdatedAt time.Time
}

// Last returns the most recent turn, or false for a thread with no turns.
func (s ThreadState) Last() (convo.Turn, bool) {
	if len(s.Turns) == 0 {
		return convo.Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// Threads runs chats whose history is stored per thread ID. Sending to one thread never
// reads or writes the turns of another.
//
// Sends to the same thread are serialized; different threads proceed in parallel.
type Threads struct {
	model convo.Model
	store checkpoint.Store
	opts  []convo.SessionOption

	mu    sync.Mutex
	locks map[string]*threadLock
}

// threadLock serializes sends to one thread. It is dropped from Threads.locks once no send
// holds or waits for it.
type threadLock struct {
	mu   sync.Mutex
	refs int
}

// NewThreads creates a thread-keyed chat over store. opts apply to every session; a system
// prompt is only added to a thread's first turn.
func NewThreads(model convo.Model, store checkpoint.Store, opts ...convo.SessionOption) *Threads {
	return &Threads{
		model: model,
		store: store,
		opts:  opts,
		locks: make(map[string]*threadLock),
	}
}

func (t *Threads) lock(threadID string) func() {
	t.mu.Lock()
	l, ok := t.locks[threadID]
	if !ok {
		l = &threadLock{}
		t.locks[threadID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, threadID)
		}
		t.mu.Unlock()
	}
}

// Send continues threadID with text and returns the reply. The updated transcript is saved
// as a new checkpoint only when the reply succeeds.
func (t *Threads) Send(ctx context.Context, threadID, text string) (string, error) {
	return t.SendWith(ctx, threadID, text)
}

// SendWith is Send with extra session options for this call only, e.g. a streaming
// callback.
func (t *Threads) SendWith(
	ctx context.Context,
	threadID, text string,
	opts ...convo.SessionOption,
) (string, error) {
	if threadID == "" {
		return "", checkpoint.ErrEmptyThreadID
	}
	defer t.lock(threadID)()

	state, err := t.load(ctx, threadID)
	if err != nil {
		return "", err
	}
	transcript, err := convo.NewTranscript(state.Turns...)
	if err != nil {
		return "", fmt.Errorf("chat: restore thread %q: %w", threadID, err)
	}

	sessionOpts := make([]convo.SessionOption, 0, len(t.opts)+len(opts)+1)
	sessionOpts = append(sessionOpts, t.opts...)
	sessionOpts = append(sessionOpts, opts...)
	sessionOpts = append(sessionOpts, convo.WithTranscript(transcript))
	session := convo.NewSession(t.model, sessionOpts...)

	reply, err := session.Ask(ctx, text)
	if err != nil {
		return "", err
	}

	payload, err := checkpoint.Encode(snapshot{Turns: session.Transcript()})
	if err != nil {
		return "", fmt.Errorf("chat: encode thread %q: %w", threadID, err)
	}
	if err := t.store.Put(ctx, &checkpoint.Checkpoint{
		ThreadID: threadID,
		Node:     NodeAgent,
		Payload:  payload,
	}); err != nil {
		return "", fmt.Errorf("chat: save thread %q: %w", threadID, err)
	}
	return reply.Text(), nil
}

// State returns the saved state of threadID. An unknown thread has no turns and step 0.
func (t *Threads) State(ctx context.Context, threadID string) (ThreadState, error) {
	if threadID == "" {
		return ThreadState{}, checkpoint.ErrEmptyThreadID
	}
	return t.load(ctx, threadID)
}

// List returns the IDs of all saved threads.
func (t *Threads) List(ctx context.Context) ([]string, error) {
	return t.store.Threads(ctx)
}

func (t *Threads) load(ctx context.Context, threadID string) (ThreadState, error) {
	state := ThreadState{ThreadID: threadID}

	cp, ok, err := t.store.Latest(ctx, threadID)
	if err != nil {
		return state, fmt.Errorf("chat: load thread %q: %w", threadID, err)
	}
	if !ok {
		return state, nil
	}

	var snap snapshot
	if err := checkpoint.Decode(cp.Payload, &snap); err != nil {
		return state, fmt.Errorf("chat: decode thread %q: %w", threadID, err)
	}
	state.Turns = snap.Turns
	state.Step = cp.Step
	state.UpdatedAt = cp.CreatedAt
	return state, nil
}
