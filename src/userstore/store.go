// Package userstore persists the set of user IDs that have talked to the bot.
package userstore

import "context"

// Store is the user registry. Implementations must be safe for concurrent
// use; Add must be idempotent.
type Store interface {
	// Add registers a user ID. Returns true if the user was not known before.
	Add(ctx context.Context, userID int64) (bool, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)

	// Close releases any underlying resources.
	Close() error
}
