package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type input struct {
		raw map[string]any
	}

	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "nil schema returns nil",
			input:    input{raw: nil},
			expected: expected{isNil: true},
		},
		{
			name: "valid schema compiles",
			input: input{
				raw: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
					},
				},
			},
		},
		{
			name: "invalid type keyword",
			input: input{
				raw: map[string]any{"type": 42},
			},
			expected: expected{isNil: true, hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.input.raw)

			if tt.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected.isNil, s == nil)
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"queries": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"queries"},
	})

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "valid", input: `{"queries": ["solar", "wind"]}`, expected: true},
		{name: "empty list", input: `{"queries": []}`, expected: true},
		{name: "missing required", input: `{}`, expected: false},
		{name: "wrong item type", input: `{"queries": [1, 2]}`, expected: false},
		{name: "not json", input: `queries: [a]`, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateJSON([]byte(tt.input))
			if tt.expected {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestSchema_NilIsPermissive(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]any{"anything": true}))
	assert.Nil(t, s.Raw())
	assert.Empty(t, s.String())
}

type searchPlan struct {
	Queries []string `json:"queries" jsonschema:"minItems=1,maxItems=3"`
	Reason  string   `json:"reason,omitempty"`
}

func TestFor(t *testing.T) {
	s, err := For[searchPlan]()
	require.NoError(t, err)

	raw := s.Raw()
	assert.Equal(t, "object", raw["type"])
	assert.Equal(t, []any{"queries"}, raw["required"])
	assert.Contains(t, s.String(), `"queries"`)

	assert.NoError(t, s.ValidateJSON([]byte(`{"queries": ["a"]}`)))
	assert.Error(t, s.ValidateJSON([]byte(`{"queries": []}`)))
	assert.Error(t, s.ValidateJSON([]byte(`{"queries": ["a", "b", "c", "d"]}`)))
	assert.Error(t, s.ValidateJSON([]byte(`{"queries": ["a"], "extra": 1}`)))
}

func TestDecodeJSON(t *testing.T) {
	s := MustFor[searchPlan]()

	plan, err := DecodeJSON[searchPlan](s, []byte(`{"queries": ["solar cost", "wind capacity"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"solar cost", "wind capacity"}, plan.Queries)

	_, err = DecodeJSON[searchPlan](s, []byte(`{"queries": "solar"}`))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
