// Package convo provides the building blocks for orchestrating calls to a chat-completion
// LLM backend: role-tagged [Turn] values, an append-only [Transcript], a [Session] that owns
// the transcript and obtains replies from a [Model], and the [Tool] abstraction invoked by
// agent loops.
//
// The orchestration patterns live in subpackages:
//
//   - agents/chat: single completions, multi-turn chat and thread-keyed chat memory
//   - agents/react: the reason-act-observe loop driven by "Action: tool: input" directives
//   - agents/reflection: a generate/critique loop
//   - agents/reflexion: an outline, research, write and review loop with checkpoints
//
// Supporting packages: models (backends), toolbox (tool dispatch), hooks and loggers (run
// observation), checkpoint (thread persistence), search, travel, schema and config. The
// convo command in cmd/convo wires them together.
//
// # Quick Start: ReAct Travel Agent
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    "github.com/rickchristie/convo"
//	    "github.com/rickchristie/convo/agents/react"
//	    "github.com/rickchristie/convo/models"
//	    "github.com/rickchristie/convo/toolbox"
//	    "github.com/rickchristie/convo/travel"
//	)
//
//	func main() {
//	    model, err := models.NewLangChainGoOpenAI(os.Getenv("OPENAI_API_KEY"), "", "gpt-4o-mini")
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    dir := travel.DefaultDirectory()
//	    tools := toolbox.MustNewRegistry(travel.Tools(dir)...)
//
//	    session := convo.NewSession(model,
//	        convo.WithModelName("gpt-4o-mini"),
//	        convo.WithSystemPrompt(travel.SystemPrompt(tools)),
//	    )
//
//	    result, err := react.NewLoop(session, tools).
//	        Run(context.Background(), "What should I pack for Tokyo?")
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(result.Answer)
//	}
//
// # Errors
//
// Backend failures surface as [*BackendError], actions naming unregistered tools as
// [*UnknownToolError], and an exhausted iteration budget as [ErrIterationBudgetExceeded].
// Nothing is retried.
package convo
