package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// longPollSeconds is the getUpdates blocking window.
	longPollSeconds = 60

	// errorBackoff is the pause after a failed poll before trying again.
	errorBackoff = 3 * time.Second
)

// UpdateHandler consumes inbound updates. Calls may run concurrently.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller drives the long-poll loop and dispatches each update to the
// handler in its own goroutine. Different users' messages are therefore
// handled concurrently, and a flood from one user may interleave too.
type Poller struct {
	client  *Client
	handler UpdateHandler
	logger  *slog.Logger
	offset  int64
	wg      sync.WaitGroup
}

// NewPoller creates a poller for the given client and handler.
func NewPoller(client *Client, handler UpdateHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:  client,
		handler: handler,
		logger:  logger.With("component", "telegram_poller"),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight handlers.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting long poll loop")

	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		default:
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, longPollSeconds)
		if err != nil {
			if ctx.Err() != nil {
				p.wg.Wait()
				return ctx.Err()
			}
			p.logger.Error("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				p.wg.Wait()
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			p.wg.Add(1)
			go func(u Update) {
				defer p.wg.Done()
				p.handler.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
