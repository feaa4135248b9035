// Package app wires the bot together and supervises its long-running parts.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dionbett/chatrelay/src/bot"
	"github.com/dionbett/chatrelay/src/config"
	"github.com/dionbett/chatrelay/src/healthz"
	"github.com/dionbett/chatrelay/src/memory"
	"github.com/dionbett/chatrelay/src/orclient"
	"github.com/dionbett/chatrelay/src/telegram"
	"github.com/dionbett/chatrelay/src/userstore"
	"github.com/spf13/afero"
)

// App holds all services of the running bot.
type App struct {
	Config        config.Config
	Client        *orclient.Client
	Telegram      *telegram.Client
	Users         userstore.Store
	Conversations *memory.Store
	Handler       *bot.Handler
	Health        *healthz.Server
	Poller        *telegram.Poller
	Logger        *slog.Logger
}

// New creates an App with all services initialized. No network calls are
// made here; a bad configuration fails before anything is reachable.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	users, err := openUserStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	client := orclient.NewClient(orclient.Config{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		SiteURL:  cfg.SiteURL,
		SiteName: cfg.SiteName,
		Logger:   logger,
	})

	tg := telegram.NewClient(telegram.Config{
		Token:  cfg.BotToken,
		Logger: logger,
	})

	conversations := memory.NewStore(cfg.WindowSize)
	health := healthz.NewServer(cfg.Port, logger)

	handler, err := bot.NewHandler(bot.Config{
		Completer:     client,
		Messenger:     tg,
		Conversations: conversations,
		Users:         users,
		SystemPrompt:  cfg.SystemPrompt,
		Stats:         health.Stats,
		Logger:        logger,
	})
	if err != nil {
		users.Close()
		return nil, err
	}

	return &App{
		Config:        cfg,
		Client:        client,
		Telegram:      tg,
		Users:         users,
		Conversations: conversations,
		Handler:       handler,
		Health:        health,
		Poller:        telegram.NewPoller(tg, handler, logger),
		Logger:        logger,
	}, nil
}

// Run starts the health server and the poll loop as independently
// supervised goroutines and blocks until one fails or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- a.Health.Run(ctx) }()
	go func() { errCh <- a.Poller.Run(ctx) }()

	a.Logger.Info("bot is running", "model", a.Client.Model(), "port", a.Config.Port)

	err := <-errCh
	cancel()
	// Wait for the second goroutine so nothing outlives Run.
	<-errCh

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	if a.Users != nil {
		return a.Users.Close()
	}
	return nil
}

func openUserStore(cfg config.Config) (userstore.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return userstore.OpenSQLite(cfg.DatabasePath())
	default:
		return userstore.OpenFileStore(afero.NewOsFs(), cfg.UserFilePath())
	}
}
