package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"
)

func TestNewTurn(t *testing.T) {
	type expected struct {
		role Role
		err  error
	}

	tests := []struct {
		name     string
		input    Role
		expected expected
	}{
		{name: "system", input: RoleSystem, expected: expected{role: RoleSystem}},
		{name: "user", input: RoleUser, expected: expected{role: RoleUser}},
		{name: "assistant", input: RoleAssistant, expected: expected{role: RoleAssistant}},
		{name: "tool role rejected", input: Role("tool"), expected: expected{err: ErrInvalidRole}},
		{name: "empty role rejected", input: Role(""), expected: expected{err: ErrInvalidRole}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, err := NewTurn(tt.input, "hello")

			if tt.expected.err != nil {
				assert.ErrorIs(t, err, tt.expected.err)
				assert.True(t, turn.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.role, turn.Role())
			assert.Equal(t, "hello", turn.Text())
		})
	}
}

func TestRole_MessageType(t *testing.T) {
	assert.Equal(t, llms.ChatMessageTypeSystem, RoleSystem.MessageType())
	assert.Equal(t, llms.ChatMessageTypeHuman, RoleUser.MessageType())
	assert.Equal(t, llms.ChatMessageTypeAI, RoleAssistant.MessageType())
}

func TestTurn_MessageContent(t *testing.T) {
	msg := AssistantTurn("Action: check_weather: Tokyo").MessageContent()

	assert.Equal(t, llms.ChatMessageTypeAI, msg.Role)
	require.Len(t, msg.Parts, 1)
	assert.Equal(t, llms.TextContent{Text: "Action: check_weather: Tokyo"}, msg.Parts[0])
}

func TestTurn_YAML(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := []Turn{SystemTurn("be brief"), UserTurn("hi"), AssistantTurn("hello")}

		data, err := yaml.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(data), "role: assistant")

		var out []Turn
		require.NoError(t, yaml.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		var out []Turn
		err := yaml.Unmarshal([]byte("- role: tool\n  text: x\n"), &out)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}
