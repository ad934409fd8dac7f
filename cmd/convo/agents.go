package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/agents/react"
	"github.com/rickchristie/convo/agents/reflection"
	"github.com/rickchristie/convo/agents/reflexion"
	"github.com/rickchristie/convo/toolbox"
	"github.com/rickchristie/convo/travel"
	"github.com/spf13/cobra"
)

// Prompts used when a command is given no argument.
const (
	defaultQuestion = "What should I pack for a trip to Tokyo and where should I stay?"
	defaultRequest  = "Write a LinkedIn post about shipping an API caching layer"
	defaultTopic    = "The impact of renewable energy on climate change"
)

func argOrDefault(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return strings.Join(args, " ")
}

func newReactCommand(a *app) *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:   "react [question...]",
		Short: "Answer a travel question with the weather, hotel and attraction tools",
		Long: `Runs the ReAct loop: every reply is printed, each "Action: <tool>: <input>" line is
executed and its result fed back as an observation, until the model answers without an
action or the iteration budget (--max-iterations) runs out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}

			directory := travel.DefaultDirectory()
			if dataFile != "" {
				if directory, err = travel.LoadDirectory(dataFile); err != nil {
					return err
				}
			}
			tools, err := toolbox.NewRegistry(travel.Tools(directory)...)
			if err != nil {
				return err
			}
			registry, err := a.hooks(cmd.Context(), true)
			if err != nil {
				return err
			}

			question := argOrDefault(args, defaultQuestion)
			opts := append(a.sessionOptions(), convo.WithSystemPrompt(travel.SystemPrompt(tools)))
			loop := react.NewLoop(convo.NewSession(model, opts...), tools).
				WithMaxIterations(a.cfg.MaxIterations).
				WithHooks(registry)

			fmt.Fprintln(a.out, color.New(color.Bold).Sprint("Question: ")+question)
			result, err := loop.Run(cmd.Context(), question)
			if errors.Is(err, convo.ErrIterationBudgetExceeded) {
				fmt.Fprintf(a.out, "No final answer after %d iterations.\n", result.Iterations)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, color.New(color.FgGreen, color.Bold).Sprint("\nFinal answer:"))
			fmt.Fprintln(a.out, result.Answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "YAML file replacing the built-in travel tables")
	return cmd
}

func newReflectCommand(a *app) *cobra.Command {
	var maxMessages int

	cmd := &cobra.Command{
		Use:   "reflect [request...]",
		Short: "Draft, critique and redraft a piece of writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			registry, err := a.hooks(cmd.Context(), true)
			if err != nil {
				return err
			}

			result, err := reflection.New(model).
				WithMaxMessages(maxMessages).
				WithSessionOptions(a.sessionOptions()...).
				WithHooks(registry).
				Run(cmd.Context(), argOrDefault(args, defaultRequest))
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, color.New(color.FgGreen, color.Bold).Sprint("\nFinal draft:"))
			fmt.Fprintln(a.out, result.Draft)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxMessages, "max-messages", reflection.DefaultMaxMessages,
		"stop once the history holds this many messages")
	return cmd
}

func newReflexionCommand(a *app) *cobra.Command {
	var (
		threadID   string
		iterations int
		resume     bool
	)

	cmd := &cobra.Command{
		Use:   "reflexion [topic...]",
		Short: "Plan, research, write and revise an essay, saving a checkpoint after every step",
		Long: `Runs the essay writer: plan -> research -> write, then review -> research -> write
until --iterations drafts exist. Search uses Tavily when --tavily-key is set and a built-in
corpus otherwise. With --resume the thread continues from its last checkpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			store, err := a.checkpoints()
			if err != nil {
				return err
			}
			registry, err := a.hooks(cmd.Context(), true)
			if err != nil {
				return err
			}

			graph := reflexion.New(model, a.searcher(), store).
				WithSessionOptions(a.sessionOptions()...).
				WithHooks(registry)

			var snap *reflexion.Snapshot
			if resume {
				if threadID == "" {
					return errors.New("--resume needs --thread")
				}
				snap, err = graph.Resume(cmd.Context(), threadID)
			} else {
				snap, err = graph.Run(cmd.Context(), threadID, reflexion.State{
					Topic:           argOrDefault(args, defaultTopic),
					TotalIterations: iterations,
				})
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\nThread: %s (step %d)\n", snap.ThreadID, snap.Step)
			fmt.Fprintln(a.out, color.New(color.FgGreen, color.Bold).Sprint("Final Essay:"))
			fmt.Fprintln(a.out, snap.State.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "thread ID (default: a new UUID)")
	cmd.Flags().IntVar(&iterations, "iterations", reflexion.DefaultTotalIterations, "number of drafts")
	cmd.Flags().BoolVar(&resume, "resume", false, "continue the thread from its last checkpoint")
	return cmd
}
