package loggers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/agents/react"
	"github.com/rickchristie/convo/internal/tt"
	"github.com/rickchristie/convo/loggers"
	"github.com/rickchristie/convo/toolbox"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLoop(t *testing.T, hook any, maxIterations int, replies ...string) {
	t.Helper()
	model := tt.NewMockModel().AddResponses(replies...)
	weather := tt.NewMockTool("check_weather").WithOutput("Tokyo: Rainy, 18°C")
	session := convo.NewSession(model, convo.WithSystemPrompt("system"))
	loop := react.NewLoop(session, toolbox.MustNewRegistry(weather)).
		WithMaxIterations(maxIterations).
		RegisterHook(hook)
	_, _ = loop.Run(context.Background(), "What should I pack for Tokyo?")
}

func TestPrinter(t *testing.T) {
	type input struct {
		replies       []string
		maxIterations int
	}

	type expected struct {
		lines  []string
		absent []string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "tool call then answer",
			input: input{
				replies: []string{
					"Thought: weather first.\nAction: check_weather: Tokyo",
					"Pack an umbrella.",
				},
				maxIterations: 10,
			},
			expected: expected{
				lines: []string{
					"[Agent Response]",
					"Action: check_weather: Tokyo",
					"[Executing] check_weather(Tokyo)",
					"[Result] Tokyo: Rainy, 18°C",
					"Pack an umbrella.",
					"[Complete] Agent has provided final answer.",
				},
				absent: []string{"[Timeout]", "[Error]"},
			},
		},
		{
			name: "budget exhausted",
			input: input{
				replies:       []string{"Action: check_weather: Tokyo"},
				maxIterations: 1,
			},
			expected: expected{
				lines:  []string{"[Executing] check_weather(Tokyo)", "[Timeout] Max iterations reached"},
				absent: []string{"[Complete]"},
			},
		},
		{
			name: "unknown tool",
			input: input{
				replies:       []string{"Action: book_flight: Tokyo"},
				maxIterations: 10,
			},
			expected: expected{
				lines:  []string{"[Error] Unknown tool: book_flight"},
				absent: []string{"[Executing]", "[Complete]"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			runLoop(t, loggers.NewPrinter(&buf).WithNoColor(), tc.input.maxIterations, tc.input.replies...)

			out := buf.String()
			last := -1
			for _, line := range tc.expected.lines {
				idx := strings.Index(out, line)
				require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", line, out)
				assert.Greater(t, idx, last, "%q out of order", line)
				last = idx
			}
			for _, s := range tc.expected.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPrinter_ToolFailurePrintedOnce(t *testing.T) {
	var buf bytes.Buffer
	model := tt.NewMockModel().AddResponses("Action: check_weather: Tokyo")
	weather := tt.NewMockTool("check_weather").WithError(errors.New("table missing"))
	session := convo.NewSession(model, convo.WithSystemPrompt("system"))
	loop := react.NewLoop(session, toolbox.MustNewRegistry(weather)).
		RegisterHook(loggers.NewPrinter(&buf).WithNoColor())

	_, err := loop.Run(context.Background(), "What should I pack for Tokyo?")
	require.Error(t, err)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "[Error]"), out)
	assert.Contains(t, out, "table missing")
	assert.NotContains(t, out, "[Complete]")
}

func TestPrinter_Replies(t *testing.T) {
	var buf bytes.Buffer
	runLoop(t, loggers.NewPrinter(&buf).WithNoColor().WithReplies(false), 10, "Pack an umbrella.")

	assert.NotContains(t, buf.String(), "[Agent Response]")
	assert.Contains(t, buf.String(), "[Complete]")
}

func TestPrinter_Node(t *testing.T) {
	var buf bytes.Buffer
	p := loggers.NewPrinter(&buf).WithNoColor()

	p.OnAfterNode(context.Background(), convo.AfterNodeEvent{Node: "plan", Output: "1. Intro"})
	p.OnAfterNode(context.Background(), convo.AfterNodeEvent{Node: "write", Err: errors.New("boom")})

	assert.Equal(t, "\n[PLAN]\n1. Intro\n[Error] write: boom\n", buf.String())
}

func TestZerologHook(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	runLoop(t, loggers.NewZerologHook(logger), 10,
		"Action: check_weather: Tokyo",
		"Pack an umbrella.",
	)

	var messages []string
	var last map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		messages = append(messages, entry["message"].(string))
		last = entry
	}

	assert.Equal(t, []string{
		"run started",
		"iteration started",
		"reply received",
		"calling tool",
		"tool returned",
		"iteration started",
		"reply received",
		"run finished",
	}, messages)
	assert.Equal(t, "info", last["level"])
	assert.Equal(t, "done", last["phase"])
	assert.Equal(t, float64(2), last["iterations"])
	assert.Equal(t, float64(20), last["input_tokens"])
}

func TestZerologHook_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	runLoop(t, loggers.NewZerologHook(logger), 10, "Action: book_flight: Tokyo")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "failed", entry["phase"])
	assert.Contains(t, entry["error"], "book_flight")
}

func TestPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)
	defer pubSub.Close()

	publisher := loggers.NewPublisher(pubSub, "")
	assert.Equal(t, loggers.DefaultTopic, publisher.Topic())

	messages, err := pubSub.Subscribe(ctx, publisher.Topic())
	require.NoError(t, err)

	received := make(chan loggers.Event, 32)
	go func() {
		for msg := range messages {
			var event loggers.Event
			if err := json.Unmarshal(msg.Payload, &event); err == nil {
				received <- event
			}
			msg.Ack()
		}
	}()

	runLoop(t, publisher, 10, "Action: check_weather: Tokyo", "Pack an umbrella.")

	var events []loggers.Event
	for len(events) < 8 {
		select {
		case e := <-received:
			events = append(events, e)
		case <-ctx.Done():
			t.Fatalf("received %d events before timeout", len(events))
		}
	}

	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		loggers.EventBeforeRun,
		loggers.EventBeforeIteration,
		loggers.EventAfterReply,
		loggers.EventBeforeToolCall,
		loggers.EventAfterToolCall,
		loggers.EventBeforeIteration,
		loggers.EventAfterReply,
		loggers.EventAfterRun,
	}, types)

	assert.Equal(t, "What should I pack for Tokyo?", events[0].Input)
	assert.Equal(t, "check_weather", events[4].ToolName)
	assert.Equal(t, "Tokyo: Rainy, 18°C", events[4].Output)
	assert.Equal(t, "done", events[7].Phase)
	assert.Equal(t, "Pack an umbrella.", events[7].Output)
	assert.Empty(t, events[7].Error)
}

type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisher_FailureDoesNotStopRun(t *testing.T) {
	broker := &failingPublisher{}
	model := tt.NewMockModel().AddResponses("Pack an umbrella.")
	loop := react.NewLoop(convo.NewSession(model), toolbox.MustNewRegistry()).
		RegisterHook(loggers.NewPublisher(broker, "events"))

	result, err := loop.Run(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "Pack an umbrella.", result.Answer)
	assert.Equal(t, 4, broker.calls)
}
