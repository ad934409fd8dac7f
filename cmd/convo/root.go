package main

import (
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/config"
	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. The returned app must be closed after Execute,
// whether or not the command failed.
func newRootCommand(newModel func(config.Config) (convo.Model, error)) (*cobra.Command, *app) {
	a := &app{newModel: newModel}

	rootCmd := &cobra.Command{
		Use:           "convo",
		Short:         "Run conversational LLM agents: chat, ReAct tool use, reflection and reflexion",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./convo.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newAskCommand(a),
		newChatCommand(a),
		newStateCommand(a),
		newReactCommand(a),
		newReflectCommand(a),
		newReflexionCommand(a),
	)
	return rootCmd, a
}
