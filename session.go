package convo

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Session owns one [Transcript] and obtains assistant replies for it from a [Model].
//
// Every call to RequestReply is a complete round-trip: the whole transcript is sent and the
// reply is appended before it is returned, so there is no state outside the transcript.
// A Session is not safe for concurrent use; each run owns its own session.
type Session struct {
	model         Model
	modelName     string
	temperature   float64
	streamingFunc func(ctx context.Context, chunk []byte) error
	systemPrompt  string
	transcript    *Transcript
	usage         Usage
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithModelName sets the model name sent with every request (e.g. "gpt-4o-mini").
// When empty the backend's own default is used.
func WithModelName(name string) SessionOption {
	return func(s *Session) {
		s.modelName = name
	}
}

// WithTemperature sets the sampling temperature. The default is 0.
func WithTemperature(temperature float64) SessionOption {
	return func(s *Session) {
		s.temperature = temperature
	}
}

// WithStreamingFunc receives reply chunks as the backend produces them. The complete reply
// is still returned by RequestReply.
func WithStreamingFunc(fn func(ctx context.Context, chunk []byte) error) SessionOption {
	return func(s *Session) {
		s.streamingFunc = fn
	}
}

// WithSystemPrompt starts an empty transcript with a system turn. It is ignored when
// WithTranscript supplies a non-empty transcript, which already carries its own.
func WithSystemPrompt(prompt string) SessionOption {
	return func(s *Session) {
		s.systemPrompt = prompt
	}
}

// WithTranscript continues an existing transcript, typically one restored from a checkpoint.
// The session takes ownership; the caller must not keep appending to it.
func WithTranscript(t *Transcript) SessionOption {
	return func(s *Session) {
		s.transcript = t
	}
}

// NewSession creates a session backed by model.
func NewSession(model Model, opts ...SessionOption) *Session {
	s := &Session{model: model}
	for _, opt := range opts {
		opt(s)
	}
	if s.transcript == nil {
		s.transcript = &Transcript{}
	}
	if s.systemPrompt != "" && s.transcript.Len() == 0 {
		// Cannot fail: the transcript is empty.
		_ = s.transcript.Append(SystemTurn(s.systemPrompt))
	}
	return s
}

// Append adds a turn to the end of the transcript.
func (s *Session) Append(turn Turn) error {
	return s.transcript.Append(turn)
}

// RequestReply sends the full transcript to the backend, appends the assistant reply and
// returns it. On failure the transcript is left unchanged and a [*BackendError] is returned.
func (s *Session) RequestReply(ctx context.Context) (Turn, error) {
	resp, err := s.model.GenerateContent(ctx, s.transcript.Messages(), s.callOptions()...)
	if err != nil {
		return Turn{}, &BackendError{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return Turn{}, &BackendError{Err: ErrEmptyResponse}
	}

	reply := AssistantTurn(resp.Choices[0].Content)
	// Cannot fail: assistant turns are always valid.
	_ = s.transcript.Append(reply)
	s.usage.add(resp.Info)
	return reply, nil
}

// Ask appends a user turn and requests the reply to it.
func (s *Session) Ask(ctx context.Context, text string) (Turn, error) {
	if err := s.Append(UserTurn(text)); err != nil {
		return Turn{}, err
	}
	return s.RequestReply(ctx)
}

// Transcript returns a copy of the turns so far.
func (s *Session) Transcript() []Turn {
	return s.transcript.Turns()
}

// Len returns the number of turns in the transcript.
func (s *Session) Len() int {
	return s.transcript.Len()
}

// Usage returns the token usage accumulated over all replies.
func (s *Session) Usage() Usage {
	return s.usage
}

func (s *Session) callOptions() []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(s.temperature)}
	if s.modelName != "" {
		opts = append(opts, llms.WithModel(s.modelName))
	}
	if s.streamingFunc != nil {
		opts = append(opts, llms.WithStreamingFunc(s.streamingFunc))
	}
	return opts
}
