package userstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// FileStore keeps the registry as a JSON array of user IDs in a single file.
// The whole file is rewritten on every registration; writes are serialized
// under the store mutex so concurrent registrations cannot corrupt it.
type FileStore struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	users map[int64]struct{}
}

// OpenFileStore loads the registry from path. A missing file means an empty
// registry, not an error.
func OpenFileStore(fs afero.Fs, path string) (*FileStore, error) {
	store := &FileStore{
		fs:    fs,
		path:  path,
		users: map[int64]struct{}{},
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse user file %s: %w", path, err)
	}
	for _, id := range ids {
		store.users[id] = struct{}{}
	}
	return store, nil
}

// Add registers a user and rewrites the backing file when the user is new.
func (s *FileStore) Add(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; ok {
		return false, nil
	}
	s.users[userID] = struct{}{}

	if err := s.save(); err != nil {
		// Keep the in-memory registration so we don't rewrite on every
		// message from the same user while the disk is unhappy.
		return true, err
	}
	return true, nil
}

// Count returns the number of registered users.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) save() error {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal user list: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create user file directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user file: %w", err)
	}
	return nil
}
