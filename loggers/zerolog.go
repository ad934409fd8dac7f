package loggers

import (
	"context"

	"github.com/rickchristie/convo"
	"github.com/rs/zerolog"
)

// ZerologHook logs run events. Run boundaries and failures are logged at info/error level,
// everything else at debug.
type ZerologHook struct {
	logger zerolog.Logger
}

// NewZerologHook creates a hook writing to logger.
func NewZerologHook(logger zerolog.Logger) *ZerologHook {
	return &ZerologHook{logger: logger}
}

func (h *ZerologHook) OnBeforeRun(_ context.Context, e convo.BeforeRunEvent) {
	h.logger.Info().
		Str("agent", e.Agent).
		Int("max_iterations", e.MaxIterations).
		Str("input", e.Input).
		Msg("run started")
}

func (h *ZerologHook) OnAfterRun(_ context.Context, e convo.AfterRunEvent) {
	ev := h.logger.Info()
	if e.Err != nil && e.Phase != convo.PhaseAborted {
		ev = h.logger.Error().Err(e.Err)
	}
	ev.Str("agent", e.Agent).
		Str("phase", string(e.Phase)).
		Int("iterations", e.Iterations).
		Int("replies", e.Usage.Replies).
		Int("input_tokens", e.Usage.InputTokens).
		Int("output_tokens", e.Usage.OutputTokens).
		Dur("duration", e.Duration).
		Msg("run finished")
}

func (h *ZerologHook) OnBeforeIteration(_ context.Context, e convo.BeforeIterationEvent) {
	h.logger.Debug().Int("iteration", e.Iteration).Msg("iteration started")
}

func (h *ZerologHook) OnAfterReply(_ context.Context, e convo.AfterReplyEvent) {
	if e.Err != nil {
		h.logger.Error().Err(e.Err).Int("iteration", e.Iteration).Msg("reply failed")
		return
	}
	h.logger.Debug().
		Int("iteration", e.Iteration).
		Dur("duration", e.Duration).
		Str("reply", e.Reply.Text()).
		Msg("reply received")
}

func (h *ZerologHook) OnBeforeToolCall(_ context.Context, e convo.BeforeToolCallEvent) {
	h.logger.Debug().
		Int("iteration", e.Iteration).
		Str("tool", e.ToolName).
		Str("input", e.Input).
		Msg("calling tool")
}

func (h *ZerologHook) OnAfterToolCall(_ context.Context, e convo.AfterToolCallEvent) {
	if e.Err != nil {
		h.logger.Error().Err(e.Err).Str("tool", e.ToolName).Msg("tool failed")
		return
	}
	h.logger.Debug().
		Str("tool", e.ToolName).
		Str("output", e.Output).
		Dur("duration", e.Duration).
		Msg("tool returned")
}

func (h *ZerologHook) OnAfterNode(_ context.Context, e convo.AfterNodeEvent) {
	if e.Err != nil {
		h.logger.Error().Err(e.Err).Str("graph", e.Graph).Str("node", e.Node).Msg("node failed")
		return
	}
	h.logger.Debug().
		Str("graph", e.Graph).
		Str("thread_id", e.ThreadID).
		Str("node", e.Node).
		Str("next", e.Next).
		Int("step", e.Step).
		Dur("duration", e.Duration).
		Msg("node finished")
}

var (
	_ convo.BeforeRunHook       = (*ZerologHook)(nil)
	_ convo.AfterRunHook        = (*ZerologHook)(nil)
	_ convo.BeforeIterationHook = (*ZerologHook)(nil)
	_ convo.AfterReplyHook      = (*ZerologHook)(nil)
	_ convo.BeforeToolCallHook  = (*ZerologHook)(nil)
	_ convo.AfterToolCallHook   = (*ZerologHook)(nil)
	_ convo.AfterNodeHook       = (*ZerologHook)(nil)
)
