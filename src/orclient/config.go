package orclient

import "log/slog"

// Config holds the configuration for the OpenRouter client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Attribution headers sent with every request.
	SiteURL  string
	SiteName string
	// Optional logger
	Logger *slog.Logger
}
