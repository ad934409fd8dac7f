// Package react implements the reason-act-observe agent loop.
//
// The model is prompted to think, then either emit a single line
//
//	Action: <tool_name>: <input>
//
// and stop, or give its final answer. [Loop] parses the first such line of every reply,
// dispatches the named tool, feeds the output back as "Observation: <output>", and repeats
// until a reply carries no action or the iteration budget runs out.
//
//	tools := toolbox.MustNewRegistry(travel.Tools(dir)...)
//	session := convo.NewSession(model, convo.WithSystemPrompt(travel.SystemPrompt(tools)))
//
//	result, err := react.NewLoop(session, tools).
//	    WithMaxIterations(10).
//	    Run(ctx, "What should I pack for Tokyo?")
//	switch {
//	case errors.Is(err, convo.ErrIterationBudgetExceeded):
//	    // no answer within budget
//	case err != nil:
//	    // backend failure or unknown tool
//	default:
//	    fmt.Println(result.Answer)
//	}
package react
