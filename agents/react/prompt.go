package react

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemTemplateContent string

// PromptData contains the data passed to the system prompt template.
type PromptData struct {
	// Behavior sets the persona and domain, e.g. "You are a helpful travel assistant."
	Behavior string

	// Tools lists the available tools, one "- name: description" line each
	// (see toolbox.Registry.Describe).
	Tools string

	// Guidance is an optional sentence placed before the one-tool-per-response rule,
	// e.g. "Use these tools to help users plan trips."
	Guidance string

	// Example is an optional worked example of a single Think/Action exchange.
	Example string
}

// DefaultSystemTemplate explains the Think-Act-Observe cycle and the exact
// "Action: <tool_name>: <input>" line the loop parses.
var DefaultSystemTemplate = template.Must(
	template.New("react_system").Parse(systemTemplateContent),
)

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SystemPrompt renders [DefaultSystemTemplate].
func SystemPrompt(data PromptData) string {
	out, err := ExecuteTemplate(DefaultSystemTemplate, data)
	if err != nil {
		// The default template only references PromptData string fields.
		panic(err)
	}
	return out
}
