package loggers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rickchristie/convo"
	"github.com/rs/zerolog/log"
)

// DefaultTopic is the topic a Publisher uses when none is given.
const DefaultTopic = "convo.events"

// Event types carried in [Event].Type.
const (
	EventBeforeRun       = "before_run"
	EventAfterRun        = "after_run"
	EventBeforeIteration = "before_iteration"
	EventAfterReply      = "after_reply"
	EventBeforeToolCall  = "before_tool_call"
	EventAfterToolCall   = "after_tool_call"
	EventAfterNode       = "after_node"
)

// Event is the JSON payload of a published message. Fields that don't apply to a type are
// omitted.
type Event struct {
	Type       string    `json:"type"`
	Time       time.Time `json:"time"`
	Agent      string    `json:"agent,omitempty"`
	Graph      string    `json:"graph,omitempty"`
	ThreadID   string    `json:"thread_id,omitempty"`
	Node       string    `json:"node,omitempty"`
	Next       string    `json:"next,omitempty"`
	Step       int       `json:"step,omitempty"`
	Iteration  int       `json:"iteration,omitempty"`
	ToolName   string    `json:"tool,omitempty"`
	Input      string    `json:"input,omitempty"`
	Output     string    `json:"output,omitempty"`
	Phase      string    `json:"phase,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Publisher publishes run events to a watermill message.Publisher, one JSON message per
// event. Publishing failures are logged and never interrupt the run.
type Publisher struct {
	publisher message.Publisher
	topic     string
	now       func() time.Time
}

// NewPublisher creates a Publisher sending to topic. An empty topic means [DefaultTopic].
func NewPublisher(publisher message.Publisher, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

func (p *Publisher) publish(event Event) {
	event.Time = p.now()
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event to JSON")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.Type)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to publish event to watermill")
		return
	}
	log.Trace().Str("topic", p.topic).Str("event_type", event.Type).Msg("Published event to watermill")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (p *Publisher) OnBeforeRun(_ context.Context, e convo.BeforeRunEvent) {
	p.publish(Event{Type: EventBeforeRun, Agent: e.Agent, Input: e.Input})
}

func (p *Publisher) OnAfterRun(_ context.Context, e convo.AfterRunEvent) {
	p.publish(Event{
		Type:       EventAfterRun,
		Agent:      e.Agent,
		Phase:      string(e.Phase),
		Output:     e.Answer,
		Iteration:  e.Iterations,
		DurationMS: e.Duration.Milliseconds(),
		Error:      errString(e.Err),
	})
}

func (p *Publisher) OnBeforeIteration(_ context.Context, e convo.BeforeIterationEvent) {
	p.publish(Event{Type: EventBeforeIteration, Iteration: e.Iteration})
}

func (p *Publisher) OnAfterReply(_ context.Context, e convo.AfterReplyEvent) {
	p.publish(Event{
		Type:       EventAfterReply,
		Iteration:  e.Iteration,
		Output:     e.Reply.Text(),
		DurationMS: e.Duration.Milliseconds(),
		Error:      errString(e.Err),
	})
}

func (p *Publisher) OnBeforeToolCall(_ context.Context, e convo.BeforeToolCallEvent) {
	p.publish(Event{
		Type:      EventBeforeToolCall,
		Iteration: e.Iteration,
		ToolName:  e.ToolName,
		Input:     e.Input,
	})
}

func (p *Publisher) OnAfterToolCall(_ context.Context, e convo.AfterToolCallEvent) {
	p.publish(Event{
		Type:       EventAfterToolCall,
		Iteration:  e.Iteration,
		ToolName:   e.ToolName,
		Input:      e.Input,
		Output:     e.Output,
		DurationMS: e.Duration.Milliseconds(),
		Error:      errString(e.Err),
	})
}

func (p *Publisher) OnAfterNode(_ context.Context, e convo.AfterNodeEvent) {
	p.publish(Event{
		Type:       EventAfterNode,
		Graph:      e.Graph,
		ThreadID:   e.ThreadID,
		Node:       e.Node,
		Next:       e.Next,
		Step:       e.Step,
		Output:     e.Output,
		DurationMS: e.Duration.Milliseconds(),
		Error:      errString(e.Err),
	})
}

var (
	_ convo.BeforeRunHook       = (*Publisher)(nil)
	_ convo.AfterRunHook        = (*Publisher)(nil)
	_ convo.BeforeIterationHook = (*Publisher)(nil)
	_ convo.AfterReplyHook      = (*Publisher)(nil)
	_ convo.BeforeToolCallHook  = (*Publisher)(nil)
	_ convo.AfterToolCallHook   = (*Publisher)(nil)
	_ convo.AfterNodeHook       = (*Publisher)(nil)
)
