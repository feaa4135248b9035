// Package config loads and validates the bot configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/dionbett/chatrelay/src/bot"
	"github.com/dionbett/chatrelay/src/memory"
)

// Storage backend names for the user registry.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config is the full bot configuration.
type Config struct {
	// BotToken authenticates against the Telegram Bot API. Required.
	BotToken string `validate:"required"`
	// APIKey authenticates against OpenRouter. Required.
	APIKey string `validate:"required"`

	Model        string `validate:"required"`
	SystemPrompt string `validate:"required"`
	SiteURL      string
	SiteName     string

	// WindowSize bounds the per-user conversation window.
	WindowSize int `validate:"gt=0"`

	// Port is where the keep-alive server listens.
	Port int `validate:"gt=0,lte=65535"`

	// Storage selects the user registry backend.
	Storage string `validate:"oneof=json sqlite"`
	// DataDir holds users.json or users.db.
	DataDir string `validate:"required"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

// Default returns the configuration defaults before environment overrides.
func Default() Config {
	return Config{
		Model:        "openai/gpt-3.5-turbo",
		SystemPrompt: bot.DefaultSystemPrompt,
		SiteURL:      "https://render.com",
		SiteName:     "Render Telegram Bot",
		WindowSize:   memory.DefaultWindowSize,
		Port:         8080,
		Storage:      StorageJSON,
		DataDir:      filepath.Join(xdg.DataHome, "chatrelay"),
		LogLevel:     "info",
	}
}

// FromEnv builds a validated configuration from the environment. A missing
// bot token or API key is a fatal configuration error: the caller must not
// have made any network or platform call yet.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")

	if v := os.Getenv("CHATRELAY_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CHATRELAY_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	if v := os.Getenv("CHATRELAY_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("CHATRELAY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CHATRELAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UserFilePath is where the JSON registry lives.
func (c Config) UserFilePath() string {
	return filepath.Join(c.DataDir, "users.json")
}

// DatabasePath is where the sqlite registry lives.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "users.db")
}
