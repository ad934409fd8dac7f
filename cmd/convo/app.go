package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/checkpoint"
	"github.com/rickchristie/convo/config"
	"github.com/rickchristie/convo/hooks"
	"github.com/rickchristie/convo/loggers"
	"github.com/rickchristie/convo/search"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	newModel func(config.Config) (convo.Model, error)

	configFile string
	cfg        config.Config
	out        io.Writer

	closers []io.Closer
	store   checkpoint.Store
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()

	closer, err := config.InitLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)

	log.Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Str("config", v.ConfigFileUsed()).
		Msg("Loaded configuration")
	return nil
}

// Close releases everything setup and the commands opened, newest first. It is safe to call
// more than once.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	a.store = nil
	return firstErr
}

func (a *app) model() (convo.Model, error) {
	return a.newModel(a.cfg)
}

func (a *app) sessionOptions() []convo.SessionOption {
	return []convo.SessionOption{
		convo.WithModelName(a.cfg.Model),
		convo.WithTemperature(a.cfg.Temperature),
	}
}

// checkpoints opens the configured store once per command.
func (a *app) checkpoints() (checkpoint.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.cfg.CheckpointDSN == "" {
		a.store = checkpoint.NewMemoryStore()
	} else {
		store, err := checkpoint.NewSQLiteStore(a.cfg.CheckpointDSN)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	a.closers = append(a.closers, a.store)
	return a.store, nil
}

func (a *app) searcher() search.Searcher {
	if a.cfg.TavilyKey != "" {
		return search.NewTavily(a.cfg.TavilyKey)
	}
	return search.DefaultCorpus()
}

// printer colors output only when writing to the real terminal.
func (a *app) printer() *loggers.Printer {
	p := loggers.NewPrinter(a.out)
	if a.out != io.Writer(os.Stdout) {
		p.WithNoColor()
	}
	return p
}

// hooks builds the registry shared by a command's agent: structured logs, the console
// trace when printTrace is set, and event publishing when enabled.
func (a *app) hooks(ctx context.Context, printTrace bool) (*hooks.Registry, error) {
	registry := hooks.NewRegistry().Register(loggers.NewZerologHook(log.Logger))
	if printTrace {
		registry.Register(a.printer())
	}
	if !a.cfg.Events {
		return registry, nil
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := loggers.NewPublisher(pubSub, loggers.DefaultTopic)
	messages, err := pubSub.Subscribe(ctx, publisher.Topic())
	if err != nil {
		return nil, fmt.Errorf("subscribe to events: %w", err)
	}
	go func() {
		for msg := range messages {
			var event loggers.Event
			if err := json.Unmarshal(msg.Payload, &event); err == nil {
				log.Debug().
					Str("topic", publisher.Topic()).
					Str("event_type", event.Type).
					RawJSON("event", msg.Payload).
					Msg("Received event")
			}
			msg.Ack()
		}
	}()
	a.closers = append(a.closers, pubSub)
	return registry.Register(publisher), nil
}

// streamTo writes reply chunks to w as they arrive.
func streamTo(w io.Writer) convo.SessionOption {
	return convo.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		_, err := w.Write(chunk)
		return err
	})
}
