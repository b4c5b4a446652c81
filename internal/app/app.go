// Package app wires configuration into the running components shared by
// every mnemo command.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mnemo/internal/agent"
	"mnemo/internal/channels"
	"mnemo/internal/config"
	"mnemo/internal/eventstream"
	"mnemo/internal/eventstream/kafka"
	"mnemo/internal/eventstream/nop"
	"mnemo/internal/history"
	"mnemo/internal/llm"
	"mnemo/internal/memory"
)

type App struct {
	Config    *config.Config
	Store     memory.Store
	Log       *history.Log
	Publisher eventstream.Publisher
	Generator *llm.Chain
	Runner    *agent.ChatRunner
}

// New opens the fact store, the event log and its publisher, and builds the
// chat runner with the configured generator chain.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := memory.Open(ctx, cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("opening fact store: %w", err)
	}

	pub, err := newPublisher(cfg.EventStream)
	if err != nil {
		store.Close()
		return nil, err
	}

	log := history.Open(cfg.History.Path, history.WithPublisher(pub))
	gen := llm.NewChainFromConfig(cfg)
	runner := agent.NewChatRunner(store, log, agent.WithGenerator(gen))

	slog.Debug("app ready",
		"memory_backend", cfg.Memory.Backend,
		"history_path", log.Path(),
		"providers", cfg.Providers,
		"eventstream", cfg.EventStream.Enabled,
	)

	return &App{
		Config:    cfg,
		Store:     store,
		Log:       log,
		Publisher: pub,
		Generator: gen,
		Runner:    runner,
	}, nil
}

func newPublisher(cfg config.EventStreamConfig) (eventstream.Publisher, error) {
	if !cfg.Enabled {
		return nop.NewPublisher(), nil
	}
	pub, err := kafka.NewPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("creating turn publisher: %w", err)
	}
	slog.Info("turn events enabled", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return eventstream.NewQueue(pub), nil
}

// Channels builds the enabled messaging channels.
func (a *App) Channels() []channels.Channel {
	var chs []channels.Channel
	for name, ch := range a.Config.Channels {
		if !ch.Enabled {
			continue
		}
		switch ch.Type {
		case "telegram":
			allowed := channels.ParseAllowedUsers(ch.Settings["allowed_users"])
			chs = append(chs, channels.NewTelegram(ch.Settings["bot_token"], a.Runner, channels.WithAllowedUsers(allowed...)))
			slog.Info("channel registered", "name", name, "type", ch.Type)
		default:
			slog.Warn("unknown channel type", "name", name, "type", ch.Type)
		}
	}
	return chs
}

func (a *App) Close() error {
	return errors.Join(a.Publisher.Close(), a.Store.Close())
}
