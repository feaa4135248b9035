// Package memory holds the bounded per-user conversation windows.
package memory

import (
	"sync"
	"time"

	"github.com/dionbett/chatrelay/src/aisdk"
)

// DefaultWindowSize is the number of messages kept per user. A user turn and
// its reply count as two entries, so this keeps the last four exchanges.
const DefaultWindowSize = 8

// Store owns all conversation windows, keyed by user ID. Conversations are
// created lazily on first append and live for the process lifetime; nothing
// is persisted. Safe for concurrent use.
//
// Appends for the same user arriving concurrently are serialized but not
// ordered: if a user sends faster than the bot replies, the window may not
// reflect strict arrival order.
type Store struct {
	mu         sync.RWMutex
	windowSize int
	windows    map[int64][]aisdk.Message
}

// NewStore creates a conversation store with the given window size.
// A size of zero or less falls back to DefaultWindowSize.
func NewStore(windowSize int) *Store {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Store{
		windowSize: windowSize,
		windows:    map[int64][]aisdk.Message{},
	}
}

// Append adds a message to the end of the user's conversation, evicting the
// oldest entries so the window never exceeds the configured size.
func (s *Store) Append(userID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := append(s.windows[userID], aisdk.Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if len(window) > s.windowSize {
		window = window[len(window)-s.windowSize:]
	}
	s.windows[userID] = window
}

// Window returns a copy of the user's current conversation window in
// chronological order. Unknown users get an empty slice.
func (s *Store) Window(userID int64) []aisdk.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.windows[userID]
	out := make([]aisdk.Message, len(window))
	copy(out, window)
	return out
}

// Users returns the number of users with a live conversation window.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}
