// Package telegram is a minimal Telegram Bot API transport: long-poll
// getUpdates in, sendMessage out.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// maxMessageLen stays under Telegram's 4096-character sendMessage limit.
	maxMessageLen = 3900
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config holds the configuration for the Telegram client.
type Config struct {
	Token string
	// APIBase overrides the Telegram endpoint, used by tests.
	APIBase string
	// Timeout bounds each API call. Must exceed the long-poll window.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient creates a Telegram client for the given bot token.
func NewClient(config Config) *Client {
	if config.APIBase == "" {
		config.APIBase = defaultAPIBase
	}
	if config.Timeout == 0 {
		config.Timeout = 70 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiBase:    config.APIBase + "/bot" + config.Token,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "telegram_client"),
	}
}

// GetUpdates long-polls the getUpdates API, blocking up to timeout seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))
	params.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/getUpdates?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create getUpdates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		apiResponse
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("telegram getUpdates failed: %d %s", envelope.ErrorCode, envelope.Description)
	}
	if len(envelope.Result) > 0 {
		c.logger.Debug("received updates", "count", len(envelope.Result))
	}
	return envelope.Result, nil
}

// SendMessage sends a text message to the given chat, truncating to stay
// under the API's message length limit.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, maxMessageLen),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sendMessage response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse sendMessage response: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram sendMessage failed: %d %s", envelope.ErrorCode, envelope.Description)
	}
	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
