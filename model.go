package convo

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Model is the LLM backend a [Session] talks to. It mirrors LangChainGo's llms.Model but
// returns a response with normalized token usage so callers don't depend on a provider's
// GenerationInfo keys.
//
// Model name, temperature and streaming are passed as llms.CallOption values
// (llms.WithModel, llms.WithTemperature, llms.WithStreamingFunc).
type Model interface {
	GenerateContent(
		ctx context.Context,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (*ContentResponse, error)
}

// ContentResponse is the response from a GenerateContent call.
type ContentResponse struct {
	// Choices contains the generated content choices. Sessions use the first one.
	Choices []*ContentChoice

	// Info contains generation metadata including normalized token counts.
	Info *GenerationInfo
}

// ContentChoice is a single content choice from the model.
type ContentChoice struct {
	Content    string
	StopReason string
}

// GenerationInfo contains metadata about one generation.
type GenerationInfo struct {
	InputTokens  int
	OutputTokens int

	// TotalTokens is reported by the provider when available, otherwise
	// InputTokens + OutputTokens.
	TotalTokens int

	Duration time.Duration
}

// Usage accumulates token counts across the replies of a session.
type Usage struct {
	Replies      int
	InputTokens  int
	OutputTokens int
}

func (u *Usage) add(info *GenerationInfo) {
	u.Replies++
	if info == nil {
		return
	}
	u.InputTokens += info.InputTokens
	u.OutputTokens += info.OutputTokens
}

// Merge adds other's counts to u, e.g. to total the sessions of a multi-step run.
func (u *Usage) Merge(other Usage) {
	u.Replies += other.Replies
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
