package tt

import (
	"context"
	"errors"
	"sync"

	"github.com/rickchristie/convo"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoResponse is returned by MockModel when its queue is empty and no fallback is set.
var ErrNoResponse = errors.New("mock: no response queued")

// -----------------------------------------------------------------------------
// MockModel - implements convo.Model
// -----------------------------------------------------------------------------

// MockModel is a configurable mock that implements convo.Model.
// Queued responses and errors are consumed in call order. MockModel is safe for
// concurrent use.
type MockModel struct {
	mu        sync.Mutex
	responses []*convo.ContentResponse
	errors    []error
	fallback  *convo.ContentResponse
	callCount int

	// CapturedMessages stores the messages passed to each GenerateContent call.
	CapturedMessages [][]llms.MessageContent

	// CapturedOptions stores the resolved call options of each GenerateContent call.
	CapturedOptions []llms.CallOptions
}

// NewMockModel creates a new MockModel with an empty queue.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// AddResponse queues a response with the specified content and token counts.
func (m *MockModel) AddResponse(content string, inputTokens, outputTokens int) *MockModel {
	return m.AddRawResponse(response(content, inputTokens, outputTokens))
}

// AddResponses queues one response per content string, each with 10 input and 5 output
// tokens.
func (m *MockModel) AddResponses(contents ...string) *MockModel {
	for _, c := range contents {
		m.AddResponse(c, 10, 5)
	}
	return m
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response
// structure (e.g., empty Choices slice).
func (m *MockModel) AddRawResponse(resp *convo.ContentResponse) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// Repeat sets the content returned once the queue is exhausted.
func (m *MockModel) Repeat(content string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response(content, 10, 5)
	return m
}

// CallCount returns the number of times GenerateContent has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent call.
func (m *MockModel) LastMessages() []llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CapturedMessages) == 0 {
		return nil
	}
	return m.CapturedMessages[len(m.CapturedMessages)-1]
}

// GenerateContent implements convo.Model.
func (m *MockModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	opts ...llms.CallOption,
) (*convo.ContentResponse, error) {
	m.mu.Lock()
	idx := m.callCount
	m.callCount++

	captured := make([]llms.MessageContent, len(messages))
	copy(captured, messages)
	m.CapturedMessages = append(m.CapturedMessages, captured)

	var callOpts llms.CallOptions
	for _, opt := range opts {
		opt(&callOpts)
	}
	m.CapturedOptions = append(m.CapturedOptions, callOpts)

	var (
		resp *convo.ContentResponse
		err  error
	)
	switch {
	case idx < len(m.responses):
		resp, err = m.responses[idx], m.errors[idx]
	case m.fallback != nil:
		resp = m.fallback
	default:
		err = ErrNoResponse
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if resp != nil && callOpts.StreamingFunc != nil && len(resp.Choices) > 0 {
		if err := callOpts.StreamingFunc(ctx, []byte(resp.Choices[0].Content)); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func response(content string, inputTokens, outputTokens int) *convo.ContentResponse {
	return &convo.ContentResponse{
		Choices: []*convo.ContentChoice{{Content: content}},
		Info: &convo.GenerationInfo{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	}
}

var _ convo.Model = (*MockModel)(nil)

// -----------------------------------------------------------------------------
// MockTool - implements convo.Tool
// -----------------------------------------------------------------------------

// MockTool is a convo.Tool that records its inputs.
type MockTool struct {
	name   string
	output func(input string) (string, error)

	// Inputs stores the input of each call.
	Inputs []string
}

// NewMockTool creates a tool that echoes "<name>(<input>)".
func NewMockTool(name string) *MockTool {
	t := &MockTool{name: name}
	t.output = func(input string) (string, error) {
		return name + "(" + input + ")", nil
	}
	return t
}

// WithOutput makes the tool always return output.
func (t *MockTool) WithOutput(output string) *MockTool {
	t.output = func(string) (string, error) { return output, nil }
	return t
}

// WithError makes the tool always fail with err.
func (t *MockTool) WithError(err error) *MockTool {
	t.output = func(string) (string, error) { return "", err }
	return t
}

// WithFunc sets the function computing the output.
func (t *MockTool) WithFunc(fn func(input string) (string, error)) *MockTool {
	t.output = fn
	return t
}

// Name implements convo.Tool.
func (t *MockTool) Name() string { return t.name }

// Description implements convo.Tool.
func (t *MockTool) Description() string { return "mock tool " + t.name }

// Call implements convo.Tool.
func (t *MockTool) Call(_ context.Context, input string) (string, error) {
	t.Inputs = append(t.Inputs, input)
	return t.output(input)
}

// CallCount returns the number of times Call has been called.
func (t *MockTool) CallCount() int {
	return len(t.Inputs)
}

var _ convo.Tool = (*MockTool)(nil)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// Roles returns the role of each turn.
func Roles(turns []convo.Turn) []convo.Role {
	roles := make([]convo.Role, len(turns))
	for i, turn := range turns {
		roles[i] = turn.Role()
	}
	return roles
}

// MessageTexts returns the text of the first part of each message.
func MessageTexts(messages []llms.MessageContent) []string {
	texts := make([]string, len(messages))
	for i, msg := range messages {
		if len(msg.Parts) == 0 {
			continue
		}
		if part, ok := msg.Parts[0].(llms.TextContent); ok {
			texts[i] = part.Text
		}
	}
	return texts
}

// MessageRoles returns the LangChainGo type of each message.
func MessageRoles(messages []llms.MessageContent) []llms.ChatMessageType {
	roles := make([]llms.ChatMessageType, len(messages))
	for i, msg := range messages {
		roles[i] = msg.Role
	}
	return roles
}
