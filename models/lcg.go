// Package models adapts LLM client libraries to [convo.Model].
//
// Three backends are available:
//   - [LCGWrapper] over any LangChainGo llms.Model (OpenAI and compatible APIs via
//     [NewLangChainGoOpenAI], GitHub Models via [NewGitHubModel])
//   - [OpenAI] calling the chat completions API directly through go-openai
//
// [New] picks one by provider name, which is how the CLI builds its model.
package models

import (
	"context"
	"time"

	"github.com/rickchristie/convo"
	"github.com/tmc/langchaingo/llms"
)

// LCGWrapper wraps an llms.Model and implements convo.Model.
// It normalizes token usage across providers.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCGWrapper(llm).WithModelName("gpt-4o-mini")
//	session := convo.NewSession(model)
type LCGWrapper struct {
	model     llms.Model
	modelName string
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model: model,
	}
}

// WithModelName sets the model requested when a call carries no llms.WithModel option.
// Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// ModelName returns the default model name.
func (m *LCGWrapper) ModelName() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// GenerateContent implements convo.Model.
func (m *LCGWrapper) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*convo.ContentResponse, error) {
	opts := options
	if m.modelName != "" {
		// Prepended so a per-call llms.WithModel still wins.
		opts = make([]llms.CallOption, 0, len(options)+1)
		opts = append(opts, llms.WithModel(m.modelName))
		opts = append(opts, options...)
	}

	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, opts...)
	duration := time.Since(startTime)
	if err != nil {
		return nil, err
	}
	if lcgResponse == nil {
		return nil, convo.ErrEmptyResponse
	}
	return convertLCGResponse(lcgResponse, duration), nil
}

// convertLCGResponse converts an llms.ContentResponse to convo.ContentResponse with
// normalized tokens.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) *convo.ContentResponse {
	response := &convo.ContentResponse{
		Choices: make([]*convo.ContentChoice, 0, len(lcgResponse.Choices)),
		Info:    &convo.GenerationInfo{Duration: duration},
	}

	for _, choice := range lcgResponse.Choices {
		if choice == nil {
			continue
		}
		response.Choices = append(response.Choices, &convo.ContentChoice{
			Content:    choice.Content,
			StopReason: choice.StopReason,
		})
	}

	// Token counts live in the first choice's GenerationInfo, under provider-specific keys.
	if len(lcgResponse.Choices) > 0 && lcgResponse.Choices[0] != nil &&
		lcgResponse.Choices[0].GenerationInfo != nil {
		rawInfo := lcgResponse.Choices[0].GenerationInfo
		response.Info.InputTokens = extractInputTokens(rawInfo)
		response.Info.OutputTokens = extractOutputTokens(rawInfo)
		response.Info.TotalTokens = extractTotalTokens(
			rawInfo,
			response.Info.InputTokens,
			response.Info.OutputTokens,
		)
	}

	return response
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
func extractInputTokens(info map[string]any) int {
	// OpenAI / Ollama
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	return getIntFromMap(info, "input_tokens")
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	return getIntFromMap(info, "output_tokens")
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

var _ convo.Model = (*LCGWrapper)(nil)
