package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps checkpoints in process memory. Checkpoints are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]*Checkpoint
	closed  bool
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string][]*Checkpoint),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, cp *Checkpoint) error {
	if cp.ThreadID == "" {
		return ErrEmptyThreadID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	cp.ID = uuid.NewString()
	cp.Step = len(s.threads[cp.ThreadID]) + 1
	cp.CreatedAt = s.now().UTC()

	s.threads[cp.ThreadID] = append(s.threads[cp.ThreadID], clone(cp))
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, threadID string) (*Checkpoint, bool, error) {
	if threadID == "" {
		return nil, false, ErrEmptyThreadID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	steps := s.threads[threadID]
	if len(steps) == 0 {
		return nil, false, nil
	}
	return clone(steps[len(steps)-1]), true, nil
}

func (s *MemoryStore) List(_ context.Context, threadID string) ([]*Checkpoint, error) {
	if threadID == "" {
		return nil, ErrEmptyThreadID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	steps := s.threads[threadID]
	out := make([]*Checkpoint, len(steps))
	for i, stored := range steps {
		out[i] = clone(stored)
	}
	return out, nil
}

func (s *MemoryStore) Threads(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ids := make([]string, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// clone copies cp including its payload, so stored history never shares memory with
// callers.
func clone(cp *Checkpoint) *Checkpoint {
	out := *cp
	if cp.Payload != nil {
		out.Payload = append([]byte(nil), cp.Payload...)
	}
	return &out
}

var _ Store = (*MemoryStore)(nil)
