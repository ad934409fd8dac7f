// Package checkpoint persists conversation state keyed by thread ID.
//
// Every saved state is a numbered step of its thread. Steps of one thread are never mixed
// with those of another; the latest step is what a resumed conversation continues from.
package checkpoint

import (
	"context"
	"errors"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyThreadID is returned when a checkpoint is written or read without a thread ID.
	ErrEmptyThreadID = errors.New("checkpoint: empty thread id")

	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("checkpoint: store is closed")
)

// Checkpoint is one saved state of a thread.
type Checkpoint struct {
	// ID is assigned by the store.
	ID       string
	ThreadID string

	// Step is assigned by the store: 1 for the first checkpoint of a thread, then
	// incrementing.
	Step int

	// Node is the step that produced this state and Next the one to run on resume.
	// Both are empty for plain chat threads.
	Node string
	Next string

	// Payload is the encoded state, see Encode.
	Payload []byte

	CreatedAt time.Time
}

// Store saves and loads checkpoints. Implementations are safe for concurrent use.
type Store interface {
	// Put assigns ID, Step and CreatedAt and saves cp.
	Put(ctx context.Context, cp *Checkpoint) error

	// Latest returns the highest step of threadID, or false when the thread has none.
	Latest(ctx context.Context, threadID string) (*Checkpoint, bool, error)

	// List returns all checkpoints of threadID in step order.
	List(ctx context.Context, threadID string) ([]*Checkpoint, error)

	// Threads returns the IDs of all threads with at least one checkpoint, sorted.
	Threads(ctx context.Context) ([]string, error)

	Close() error
}

// Encode serializes a state value for a checkpoint payload.
func Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Decode deserializes a checkpoint payload into v.
func Decode(payload []byte, v any) error {
	return yaml.Unmarshal(payload, v)
}
