package convo

// Phase is the state of an agent loop run.
//
//	AwaitingReply -> HasReply -> Dispatching -> AwaitingReply ...
//	                          -> Done
//
// Done, Aborted and Failed are terminal.
type Phase string

const (
	PhaseAwaitingReply Phase = "awaiting_reply"
	PhaseHasReply      Phase = "has_reply"
	PhaseDispatching   Phase = "dispatching"

	// PhaseDone means a reply without an action directive was returned as the final answer.
	PhaseDone Phase = "done"

	// PhaseAborted means the iteration budget was used up without a final answer.
	PhaseAborted Phase = "aborted"

	// PhaseFailed means the run stopped on an error (backend, unknown tool, tool failure,
	// context cancellation).
	PhaseFailed Phase = "failed"
)

// Terminal reports whether no further transitions are possible from p.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseDone, PhaseAborted, PhaseFailed:
		return true
	}
	return false
}
