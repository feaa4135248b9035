// Package bot orchestrates inbound messages: memory update, upstream call,
// reply relay, and the /start and /stats commands.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dionbett/chatrelay/src/aisdk"
	"github.com/dionbett/chatrelay/src/memory"
	"github.com/dionbett/chatrelay/src/telegram"
	"github.com/dionbett/chatrelay/src/userstore"
)

// DefaultSystemPrompt is prepended to every upstream request.
const DefaultSystemPrompt = "You are a friendly Telegram assistant. Keep your answers short and helpful."

// FallbackError is the reply for faults the handler recovers itself:
// transport failures, malformed upstream bodies, anything unexpected.
// Distinct from the HTTP-status fallback owned by the upstream client.
const FallbackError = "Something went wrong. Please try again later."

const (
	greetingText    = "Hey! I'm your AI assistant. Send me any question and I'll remember our chat."
	acknowledgeText = "Thinking..."
)

// Completer produces a reply for an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, messages []aisdk.Message) (string, error)
}

// Messenger sends replies back to a chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// StatsFunc returns extra process stats lines for the /stats reply. Optional.
type StatsFunc func() []string

// Handler processes inbound updates. One upstream call per message, no
// retries; every failure path degrades to a short fixed reply.
type Handler struct {
	completer     Completer
	messenger     Messenger
	conversations *memory.Store
	users         userstore.Store
	systemPrompt  string
	statsFn       StatsFunc
	logger        *slog.Logger
}

// Config holds the handler dependencies.
type Config struct {
	Completer     Completer
	Messenger     Messenger
	Conversations *memory.Store
	Users         userstore.Store
	SystemPrompt  string
	Stats         StatsFunc
	Logger        *slog.Logger
}

// NewHandler creates a handler. Completer, Messenger, Conversations and
// Users are required.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("handler creation failed: completer is required")
	}
	if cfg.Messenger == nil {
		return nil, fmt.Errorf("handler creation failed: messenger is required")
	}
	if cfg.Conversations == nil {
		return nil, fmt.Errorf("handler creation failed: conversation store is required")
	}
	if cfg.Users == nil {
		return nil, fmt.Errorf("handler creation failed: user store is required")
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		completer:     cfg.Completer,
		messenger:     cfg.Messenger,
		conversations: cfg.Conversations,
		users:         cfg.Users,
		systemPrompt:  cfg.SystemPrompt,
		statsFn:       cfg.Stats,
		logger:        logger.With("component", "bot_handler"),
	}, nil
}

// HandleUpdate routes an update to the right command or the relay path.
// Implements telegram.UpdateHandler.
func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch command(text) {
	case "/start":
		h.handleStart(ctx, msg.From.ID, msg.Chat.ID)
	case "/stats":
		h.handleStats(ctx, msg.Chat.ID)
	case "":
		h.HandleMessage(ctx, msg.From.ID, msg.Chat.ID, text)
	default:
		// Unknown command; ignore rather than feeding it to the model.
	}
}

// command extracts the leading bot command from a message, dropping any
// arguments and the @botname suffix Telegram appends in group chats.
// Returns "" for plain text.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := text
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

// HandleMessage runs one relay turn for a plain text message.
func (h *Handler) HandleMessage(ctx context.Context, userID, chatID int64, text string) {
	logger := h.logger.With("user_id", userID)

	h.registerUser(ctx, userID)

	h.conversations.Append(userID, aisdk.RoleUser, text)

	window := h.conversations.Window(userID)
	request := make([]aisdk.Message, 0, len(window)+1)
	request = append(request, aisdk.Message{Role: aisdk.RoleSystem, Content: h.systemPrompt})
	request = append(request, window...)

	h.send(ctx, chatID, acknowledgeText)

	reply, err := h.completer.Complete(ctx, request)
	if err != nil {
		logger.Error("upstream call failed", "error", err)
		h.send(ctx, chatID, FallbackError)
		return
	}

	h.send(ctx, chatID, reply)
	h.conversations.Append(userID, aisdk.RoleAssistant, reply)
}

func (h *Handler) handleStart(ctx context.Context, userID, chatID int64) {
	h.registerUser(ctx, userID)
	h.send(ctx, chatID, greetingText)
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	count, err := h.users.Count(ctx)
	if err != nil {
		h.logger.Error("failed to count users", "error", err)
		h.send(ctx, chatID, FallbackError)
		return
	}

	lines := []string{
		fmt.Sprintf("Total users who interacted with me: %d", count),
		fmt.Sprintf("Active conversations: %d", h.conversations.Users()),
	}
	if h.statsFn != nil {
		lines = append(lines, h.statsFn()...)
	}
	h.send(ctx, chatID, strings.Join(lines, "\n"))
}

// registerUser records the user; store failures are logged and the turn
// continues. Losing a registration is cheaper than dropping a reply.
func (h *Handler) registerUser(ctx context.Context, userID int64) {
	added, err := h.users.Add(ctx, userID)
	if err != nil {
		h.logger.Error("failed to register user", "user_id", userID, "error", err)
		return
	}
	if added {
		h.logger.Info("registered new user", "user_id", userID)
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.messenger.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
