// Package toolbox implements the tool dispatcher: a read-only registry mapping tool names to
// [convo.Tool] implementations.
package toolbox

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rickchristie/convo"
)

var (
	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("toolbox: duplicate tool name")

	// ErrInvalidToolName is returned for names an action directive could never address.
	ErrInvalidToolName = errors.New("toolbox: tool name must be a bare word")
)

var toolNamePattern = regexp.MustCompile(`^\w+$`)

// Registry maps tool names to tools. It is built once by NewRegistry and is read-only
// afterwards, so it may be shared between sessions.
type Registry struct {
	tools  []convo.Tool
	byName map[string]convo.Tool
}

// NewRegistry creates a registry holding the given tools, in order.
func NewRegistry(tools ...convo.Tool) (*Registry, error) {
	r := &Registry{
		tools:  make([]convo.Tool, 0, len(tools)),
		byName: make(map[string]convo.Tool, len(tools)),
	}
	for _, tool := range tools {
		name := tool.Name()
		if !toolNamePattern.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidToolName, name)
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, name)
		}
		r.tools = append(r.tools, tool)
		r.byName[name] = tool
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
// Use this for tool sets defined at init time.
func MustNewRegistry(tools ...convo.Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Invoke looks up the named tool and calls it with input.
//
// An unregistered name yields a [*convo.UnknownToolError] and nothing is called.
// A tool error is wrapped in a [*convo.ToolError].
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	tool, ok := r.byName[name]
	if !ok {
		return "", &convo.UnknownToolError{Name: name}
	}
	output, err := tool.Call(ctx, input)
	if err != nil {
		return "", &convo.ToolError{Name: name, Err: err}
	}
	return output, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Lookup returns the named tool.
func (r *Registry) Lookup(name string) (convo.Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, tool := range r.tools {
		names[i] = tool.Name()
	}
	return names
}

// Describe renders one "- name: description" line per tool, for inclusion in a system
// prompt.
func (r *Registry) Describe() string {
	var sb strings.Builder
	for i, tool := range r.tools {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(tool.Name())
		sb.WriteString(": ")
		sb.WriteString(tool.Description())
	}
	return sb.String()
}
