package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dionbett/chatrelay/src/app"
	"github.com/dionbett/chatrelay/src/config"
)

// CLI represents the main CLI structure
type CLI struct {
	LogLevel string `help:"Log level override (debug, info, warn, error)"`

	Run RunCmd `cmd:"" default:"1" help:"Run the bot (default)"`
}

// RunCmd starts the relay bot.
type RunCmd struct{}

func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	// The flag overrides the environment but still goes through the
	// config validator.
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
		if err := config.Validate(&cfg); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	logger := createLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatrelay"),
		kong.Description("Telegram relay bot for OpenRouter chat completions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
