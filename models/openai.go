package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rickchristie/convo"
	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

// OpenAI calls the chat completions API through go-openai. It works with any
// OpenAI-compatible endpoint (set a base URL).
//
// When a call carries llms.WithStreamingFunc the reply is streamed and every content delta
// is passed to the function; the complete text is still returned.
type OpenAI struct {
	client    *openai.Client
	modelName string
}

// NewOpenAI creates a client for apiKey. An empty baseURL uses api.openai.com.
func NewOpenAI(apiKey, baseURL, modelName string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return NewOpenAIWithClient(openai.NewClientWithConfig(config), modelName)
}

// NewOpenAIWithClient wraps an existing go-openai client.
func NewOpenAIWithClient(client *openai.Client, modelName string) *OpenAI {
	return &OpenAI{client: client, modelName: modelName}
}

// GenerateContent implements convo.Model.
func (m *OpenAI) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*convo.ContentResponse, error) {
	opts := llms.CallOptions{Model: m.modelName}
	for _, opt := range options {
		opt(&opts)
	}

	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	start := time.Now()
	if opts.StreamingFunc != nil {
		return m.stream(ctx, req, opts.StreamingFunc, start)
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &convo.ContentResponse{
		Choices: make([]*convo.ContentChoice, 0, len(resp.Choices)),
		Info: &convo.GenerationInfo{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
			Duration:     time.Since(start),
		},
	}
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, &convo.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: string(choice.FinishReason),
		})
	}
	return out, nil
}

func (m *OpenAI) stream(
	ctx context.Context,
	req openai.ChatCompletionRequest,
	fn func(ctx context.Context, chunk []byte) error,
	start time.Time,
) (*convo.ContentResponse, error) {
	req.Stream = true
	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var (
		content    strings.Builder
		stopReason string
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stream: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta != "" {
			content.WriteString(delta)
			if err := fn(ctx, []byte(delta)); err != nil {
				return nil, err
			}
		}
		if chunk.Choices[0].FinishReason != "" {
			stopReason = string(chunk.Choices[0].FinishReason)
		}
	}

	return &convo.ContentResponse{
		Choices: []*convo.ContentChoice{{Content: content.String(), StopReason: stopReason}},
		// Usage is not reported on streamed replies.
		Info: &convo.GenerationInfo{Duration: time.Since(start)},
	}, nil
}

func toOpenAIMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openAIRole(msg.Role),
			Content: textOf(msg),
		})
	}
	return out
}

func openAIRole(t llms.ChatMessageType) string {
	switch t {
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// textOf concatenates the text parts of msg; other part types are not sent.
func textOf(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

// temperature maps 0 to the smallest positive float32: the request field is omitempty and
// an omitted temperature means 1 to the API.
func temperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

var _ convo.Model = (*OpenAI)(nil)
