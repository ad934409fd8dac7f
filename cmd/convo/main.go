// Command convo runs the conversational agents from a terminal.
//
//	convo ask "What is machine learning? shortly in 100 chars."
//	convo chat --thread user_1 --checkpoints threads.db
//	convo state --thread user_1 --checkpoints threads.db
//	convo react "What should I pack for a trip to Tokyo and where should I stay?"
//	convo reflect "Write a LinkedIn post about shipping an API caching layer"
//	convo reflexion --iterations 2 "The impact of renewable energy on climate change"
//
// Settings come from flags, CONVO_* environment variables (OPENAI_API_KEY for the key) and
// an optional convo.yaml.
package main

import (
	"fmt"
	"os"

	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/config"
	"github.com/rickchristie/convo/models"
)

func main() {
	rootCmd, a := newRootCommand(newModel)
	err := rootCmd.Execute()
	if closeErr := a.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newModel(c config.Config) (convo.Model, error) {
	return models.New(c.Settings())
}
