package react

import (
	"regexp"
	"strings"
)

// ObservationPrefix starts the user turn that carries a tool's output back to the model.
const ObservationPrefix = "Observation: "

// actionPattern matches a line that starts with "Action: ", then a bare tool name, ": ", and
// the rest of the line as input. (?m) anchors ^ and $ to line boundaries, so "Action:" in the
// middle of prose never matches.
var actionPattern = regexp.MustCompile(`(?m)^Action: (\w+): (.*)$`)

// Directive is a tool invocation parsed from assistant text.
type Directive struct {
	ToolName  string
	ToolInput string
}

// ParseDirective returns the first action directive in text.
//
// Only the first matching line counts: the model is instructed to make one tool call per
// reply and stop, and any later Action lines in the same reply are ignored. Lines that don't
// match exactly (missing colon, missing space, non-word tool name) are not directives.
func ParseDirective(text string) (Directive, bool) {
	m := actionPattern.FindStringSubmatch(text)
	if m == nil {
		return Directive{}, false
	}
	return Directive{
		ToolName:  m[1],
		ToolInput: strings.TrimSpace(m[2]),
	}, true
}

// String renders the directive the way the model writes it.
func (d Directive) String() string {
	return "Action: " + d.ToolName + ": " + d.ToolInput
}
