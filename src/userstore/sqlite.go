package userstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
)`

// User is a registered user row.
type User struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// SQLiteStore keeps the registry in a sqlite database. Unlike FileStore it
// records when each user first appeared.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (creating if necessary) the registry database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(usersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &SQLiteStore{path: path, db: db}, nil
}

// Add registers a user. The UNIQUE constraint on user_id makes re-adds a
// no-op via INSERT OR IGNORE.
func (s *SQLiteStore) Add(ctx context.Context, userID int64) (bool, error) {
	query := `INSERT OR IGNORE INTO users (id, user_id, created_at) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query, uuid.New().String(), userID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to register user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of registered users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlscan.Get(ctx, s.db, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// List returns all registered users ordered by first contact.
func (s *SQLiteStore) List(ctx context.Context) ([]User, error) {
	var users []User
	query := `SELECT id, user_id, created_at FROM users ORDER BY created_at`
	if err := sqlscan.Select(ctx, s.db, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
