// Package loggers provides ready-made hooks for observing agent runs.
//
//   - [ZerologHook] writes structured log lines through a zerolog.Logger.
//   - [Printer] prints a colored, human-readable trace to a terminal.
//   - [Publisher] publishes every event as JSON to a watermill topic.
//
// ZerologHook and Publisher implement every hook interface in package convo. Printer skips
// the run-start and iteration-start events. All three can be registered together:
//
//	registry := hooks.NewRegistry().
//	    Register(loggers.NewZerologHook(log.Logger)).
//	    Register(loggers.NewPrinter(os.Stdout))
package loggers
