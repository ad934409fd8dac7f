// Package schema compiles JSON Schemas and validates model output against them.
//
// # Quick Start
//
//	type Queries struct {
//	    Queries []string `json:"queries" jsonschema:"minItems=1,maxItems=3"`
//	}
//
//	s := schema.MustFor[Queries]()
//	prompt := "Respond with JSON matching this schema:\n" + s.String()
//
//	queries, err := schema.DecodeJSON[Queries](s, []byte(reply))
//
// Schemas come either from a Go type via [For] or from a raw map via [Compile].
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition.
// It provides both the raw map representation (for serialization/prompts)
// and a compiled validator (for runtime validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// String renders the schema as indented JSON, ready to paste into a prompt.
func (s *Schema) String() string {
	if s == nil {
		return ""
	}
	out, err := json.MarshalIndent(s.raw, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", s.raw)
	}
	return string(out)
}

// Validate validates a decoded JSON value against the schema.
// Returns nil if valid, or a [*ValidationError] describing the failure.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidateJSON decodes raw JSON and validates it.
func (s *Schema) ValidateJSON(data []byte) error {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Err: fmt.Errorf("invalid json: %w", err)}
	}
	return s.Validate(value)
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// For reflects the JSON Schema of T from its struct fields and json/jsonschema tags.
// Definitions are inlined so the schema is self-contained.
func For[T any]() (*Schema, error) {
	r := &invopop.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	reflected := r.Reflect(new(T))

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reflected schema: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode reflected schema: %w", err)
	}
	return Compile(raw)
}

// MustFor is like For but panics on error.
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeJSON validates data against s and then decodes it into a T.
func DecodeJSON[T any](s *Schema, data []byte) (T, error) {
	var out T
	if err := s.ValidateJSON(data); err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode: %w", err)
	}
	return out, nil
}
