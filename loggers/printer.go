package loggers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rickchristie/convo"
)

// Printer writes a readable trace of a run for a person at a terminal:
//
//	[Agent Response]
//	Thought: I should check the weather.
//	Action: check_weather: Tokyo
//	[Executing] check_weather(Tokyo)
//	[Result] Tokyo: Rainy, 18°C, 80% chance of rain
//	...
//	[Complete] Agent has provided final answer.
type Printer struct {
	out      io.Writer
	header   *color.Color
	tool     *color.Color
	result   *color.Color
	done     *color.Color
	warn     *color.Color
	failure  *color.Color
	node     *color.Color
	showText bool
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:      out,
		header:   color.New(color.FgCyan, color.Bold),
		tool:     color.New(color.FgBlue),
		result:   color.New(color.FgHiBlack),
		done:     color.New(color.FgGreen, color.Bold),
		warn:     color.New(color.FgYellow, color.Bold),
		failure:  color.New(color.FgRed, color.Bold),
		node:     color.New(color.FgMagenta),
		showText: true,
	}
}

// WithNoColor disables ANSI colors, e.g. when out is not a terminal.
func (p *Printer) WithNoColor() *Printer {
	for _, c := range []*color.Color{p.header, p.tool, p.result, p.done, p.warn, p.failure, p.node} {
		c.DisableColor()
	}
	return p
}

// WithReplies controls whether reply text is printed. Turn it off when replies are already
// being streamed to the same terminal.
func (p *Printer) WithReplies(show bool) *Printer {
	p.showText = show
	return p
}

func (p *Printer) OnAfterReply(_ context.Context, e convo.AfterReplyEvent) {
	if e.Err != nil || !p.showText {
		return
	}
	p.header.Fprintln(p.out, "\n[Agent Response]")
	fmt.Fprintln(p.out, e.Reply.Text())
}

func (p *Printer) OnBeforeToolCall(_ context.Context, e convo.BeforeToolCallEvent) {
	p.tool.Fprintf(p.out, "[Executing] %s(%s)\n", e.ToolName, e.Input)
}

func (p *Printer) OnAfterToolCall(_ context.Context, e convo.AfterToolCallEvent) {
	if e.Err != nil {
		p.failure.Fprintf(p.out, "[Error] %v\n", e.Err)
		return
	}
	p.result.Fprintf(p.out, "[Result] %s\n", e.Output)
}

func (p *Printer) OnAfterNode(_ context.Context, e convo.AfterNodeEvent) {
	if e.Err != nil {
		p.failure.Fprintf(p.out, "[Error] %s: %v\n", e.Node, e.Err)
		return
	}
	p.node.Fprintf(p.out, "\n[%s]\n", strings.ToUpper(e.Node))
	if p.showText && e.Output != "" {
		fmt.Fprintln(p.out, e.Output)
	}
}

func (p *Printer) OnAfterRun(_ context.Context, e convo.AfterRunEvent) {
	switch e.Phase {
	case convo.PhaseDone:
		p.done.Fprintln(p.out, "\n[Complete] Agent has provided final answer.")
	case convo.PhaseAborted:
		p.warn.Fprintln(p.out, "\n[Timeout] Max iterations reached")
	default:
		var unknown *convo.UnknownToolError
		if errors.As(e.Err, &unknown) {
			p.failure.Fprintf(p.out, "[Error] Unknown tool: %s\n", unknown.Name)
			return
		}
		// Tool failures were already printed by OnAfterToolCall.
		var toolErr *convo.ToolError
		if e.Err != nil && !errors.As(e.Err, &toolErr) {
			p.failure.Fprintf(p.out, "[Error] %v\n", e.Err)
		}
	}
}

var (
	_ convo.AfterRunHook       = (*Printer)(nil)
	_ convo.AfterReplyHook     = (*Printer)(nil)
	_ convo.BeforeToolCallHook = (*Printer)(nil)
	_ convo.AfterToolCallHook  = (*Printer)(nil)
	_ convo.AfterNodeHook      = (*Printer)(nil)
)
