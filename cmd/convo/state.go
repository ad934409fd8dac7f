package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rickchristie/convo/agents/chat"
	"github.com/rickchristie/convo/agents/reflexion"
	"github.com/rickchristie/convo/checkpoint"
	"github.com/spf13/cobra"
)

func newStateCommand(a *app) *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show what a saved thread remembers, or list threads when --thread is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.checkpoints()
			if err != nil {
				return err
			}
			if threadID == "" {
				return listThreads(cmd.Context(), a.out, store)
			}

			cp, ok, err := store.Latest(cmd.Context(), threadID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.out, "Thread %s has no saved state.\n", threadID)
				return nil
			}
			if cp.Node == chat.NodeAgent {
				return printChatState(cmd.Context(), a.out, store, threadID)
			}
			return printReflexionState(cmd.Context(), a.out, store, threadID)
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "thread ID")
	return cmd
}

func listThreads(ctx context.Context, out io.Writer, store checkpoint.Store) error {
	ids, err := store.Threads(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No saved threads.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func printChatState(ctx context.Context, out io.Writer, store checkpoint.Store, threadID string) error {
	// The model is never called when reading state.
	state, err := chat.NewThreads(nil, store).State(ctx, threadID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.New(color.Bold).Sprintf("=== Agent Memory State (%s) ===", threadID))
	fmt.Fprintf(out, "Step: %d\n", state.Step)
	fmt.Fprintf(out, "Updated: %s\n", state.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Messages: %d\n", len(state.Turns))
	if last, ok := state.Last(); ok {
		fmt.Fprintf(out, "Last message: %s\n", last)
	}
	fmt.Fprintln(out, "Next step: ()")
	return nil
}

func printReflexionState(ctx context.Context, out io.Writer, store checkpoint.Store, threadID string) error {
	snap, _, err := reflexion.New(nil, nil, store).GetState(ctx, threadID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, color.New(color.Bold).Sprintf("=== Writer State (%s) ===", threadID))
	fmt.Fprintf(out, "Step: %d\n", snap.Step)
	fmt.Fprintf(out, "Topic: %s\n", snap.State.Topic)
	fmt.Fprintf(out, "Iteration: %d of %d\n", snap.State.Iteration, snap.State.TotalIterations)
	fmt.Fprintf(out, "Sources: %d\n", len(snap.State.Sources))
	fmt.Fprintf(out, "Last node: %s\n", snap.Node)
	fmt.Fprintf(out, "Next step: %s\n", snap.Next)
	if snap.Done() {
		fmt.Fprintln(out, "\nFinal Essay:")
		fmt.Fprintln(out, snap.State.Output)
	}
	return nil
}
