package convo

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"
)

// Role tags a [Turn] with the party that produced it.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// MessageType maps the role onto the LangChainGo message type sent to the backend.
func (r Role) MessageType() llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// Turn is one role-tagged message of a conversation.
//
// Turn is a value type with unexported fields; once constructed it cannot be changed, so a
// [Transcript] can hand out copies without anyone being able to rewrite history.
type Turn struct {
	role Role
	text string
}

// NewTurn creates a Turn, rejecting unknown roles with [ErrInvalidRole].
func NewTurn(role Role, text string) (Turn, error) {
	if !role.Valid() {
		return Turn{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return Turn{role: role, text: text}, nil
}

// SystemTurn creates a system turn.
func SystemTurn(text string) Turn {
	return Turn{role: RoleSystem, text: text}
}

// UserTurn creates a user turn. Observations fed back to the model are user turns too.
func UserTurn(text string) Turn {
	return Turn{role: RoleUser, text: text}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(text string) Turn {
	return Turn{role: RoleAssistant, text: text}
}

// Role returns the turn's role.
func (t Turn) Role() Role {
	return t.role
}

// Text returns the turn's text.
func (t Turn) Text() string {
	return t.text
}

// IsZero reports whether t is the zero Turn.
func (t Turn) IsZero() bool {
	return t.role == "" && t.text == ""
}

// MessageContent converts the turn into the LangChainGo message representation.
func (t Turn) MessageContent() llms.MessageContent {
	return llms.TextParts(t.role.MessageType(), t.text)
}

func (t Turn) String() string {
	return string(t.role) + ": " + t.text
}

type turnRecord struct {
	Role Role   `yaml:"role"`
	Text string `yaml:"text"`
}

// MarshalYAML implements yaml.Marshaler.
func (t Turn) MarshalYAML() (any, error) {
	return turnRecord{Role: t.role, Text: t.text}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Unknown roles are rejected.
func (t *Turn) UnmarshalYAML(value *yaml.Node) error {
	var rec turnRecord
	if err := value.Decode(&rec); err != nil {
		return err
	}
	turn, err := NewTurn(rec.Role, rec.Text)
	if err != nil {
		return err
	}
	*t = turn
	return nil
}
