package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/agents/chat"
	"github.com/spf13/cobra"
)

func newAskCommand(a *app) *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a single prompt and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}

			opts := a.sessionOptions()
			if stream {
				opts = append(opts, streamTo(a.out))
			}
			reply, err := chat.Complete(cmd.Context(), model, strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}
			if stream {
				fmt.Fprintln(a.out)
				return nil
			}
			fmt.Fprintln(a.out, reply)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "print the reply as it is generated")
	return cmd
}

func newChatCommand(a *app) *cobra.Command {
	var (
		threadID string
		system   string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively; with --thread the conversation is saved and can be continued",
		Long: `Starts a chat REPL. Type 'exit' to leave.

Without --thread the conversation lives in memory. With --thread every exchange is saved
as a checkpoint (use --checkpoints to keep them across runs):

  convo chat --thread user_1 --checkpoints threads.db
  convo state --thread user_1 --checkpoints threads.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}

			opts := a.sessionOptions()
			if system != "" {
				opts = append(opts, convo.WithSystemPrompt(system))
			}

			var send func(ctx context.Context, text string) error
			if threadID == "" {
				c := chat.New(model, append(opts, streamTo(a.out))...)
				send = func(ctx context.Context, text string) error {
					_, err := c.Send(ctx, text)
					return err
				}
			} else {
				store, err := a.checkpoints()
				if err != nil {
					return err
				}
				threads := chat.NewThreads(model, store, opts...)
				send = func(ctx context.Context, text string) error {
					_, err := threads.SendWith(ctx, threadID, text, streamTo(a.out))
					return err
				}
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt: color.New(color.FgCyan, color.Bold).Sprint("You: "),
				Stdout: a.out,
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			fmt.Fprintln(a.out, color.YellowString("Type your message and press Enter. Type 'exit' to end the chat."))
			return runREPL(cmd.Context(), rl, a.out, send)
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "thread ID to save and continue")
	cmd.Flags().StringVar(&system, "system", "", "system prompt for a new conversation")
	return cmd
}

// lineReader is the part of *readline.Instance the REPL uses.
type lineReader interface {
	Readline() (string, error)
}

// runREPL reads lines until exit, EOF or interrupt and sends each one. The reply is expected
// to be streamed to out by send. A failed send is reported and the REPL continues.
func runREPL(
	ctx context.Context,
	in lineReader,
	out io.Writer,
	send func(ctx context.Context, text string) error,
) error {
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out, color.GreenString("Goodbye!"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(out, color.GreenString("Goodbye!"))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, color.GreenString("Assistant: "))
		if err := send(ctx, line); err != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, color.RedString("Error: %v", err))
			continue
		}
		fmt.Fprintln(out)
	}
}
