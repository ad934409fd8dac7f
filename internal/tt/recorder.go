package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/convo"
)

// Recorder implements every hook interface and records a compact trace line per event,
// e.g. "before_tool:check_weather:Tokyo".
type Recorder struct {
	mu     sync.Mutex
	Events []string

	AfterRuns  []convo.AfterRunEvent
	AfterNodes []convo.AfterNodeEvent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf(format, args...))
}

// Trace returns a copy of the recorded trace lines.
func (r *Recorder) Trace() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	copy(out, r.Events)
	return out
}

func (r *Recorder) OnBeforeRun(_ context.Context, e convo.BeforeRunEvent) {
	r.record("before_run:%s", e.Agent)
}

func (r *Recorder) OnAfterRun(_ context.Context, e convo.AfterRunEvent) {
	r.mu.Lock()
	r.AfterRuns = append(r.AfterRuns, e)
	r.mu.Unlock()
	r.record("after_run:%s", e.Phase)
}

func (r *Recorder) OnBeforeIteration(_ context.Context, e convo.BeforeIterationEvent) {
	r.record("iteration:%d", e.Iteration)
}

func (r *Recorder) OnAfterReply(_ context.Context, e convo.AfterReplyEvent) {
	if e.Err != nil {
		r.record("reply_error")
		return
	}
	r.record("reply")
}

func (r *Recorder) OnBeforeToolCall(_ context.Context, e convo.BeforeToolCallEvent) {
	r.record("before_tool:%s:%s", e.ToolName, e.Input)
}

func (r *Recorder) OnAfterToolCall(_ context.Context, e convo.AfterToolCallEvent) {
	if e.Err != nil {
		r.record("tool_error:%s", e.ToolName)
		return
	}
	r.record("after_tool:%s", e.ToolName)
}

func (r *Recorder) OnAfterNode(_ context.Context, e convo.AfterNodeEvent) {
	r.mu.Lock()
	r.AfterNodes = append(r.AfterNodes, e)
	r.mu.Unlock()
	r.record("node:%s->%s", e.Node, e.Next)
}
