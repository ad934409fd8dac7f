package travel

import (
	"github.com/rickchristie/convo/agents/react"
)

const (
	behavior = "You are a helpful travel assistant."
	guidance = "Use these tools to help users plan trips."
	example  = `Example: If asked "What should I pack for Tokyo?"
Thought: I need to know the current weather in Tokyo to give good packing advice.
Action: check_weather: Tokyo
STOP`
)

// ToolDescriber renders the tool list for the prompt. [toolbox.Registry] implements it.
type ToolDescriber interface {
	Describe() string
}

// SystemPrompt returns the travel assistant's ReAct system prompt listing tools.
func SystemPrompt(tools ToolDescriber) string {
	return react.SystemPrompt(react.PromptData{
		Behavior: behavior,
		Tools:    tools.Describe(),
		Guidance: guidance,
		Example:  example,
	})
}
