package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bitid/internal/identity/models"
)

// PostgresStore is the document-mode medium: one row per user holding the
// full record as JSONB, plus a single-row table for the session pointer.
// SaveUsers keeps the whole-collection overwrite semantics of the adapter
// contract by replacing every row inside one transaction.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a database/sql pool over the pgx stdlib driver and
// ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing pool. Used by tests that manage the
// connection themselves.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username_lower TEXT NOT NULL UNIQUE,
	wallet_lower TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS session_pointer (
	slot SMALLINT PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
	user_id TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// EnsureSchema is exposed for integration tests running against a fresh
// database.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return s.ensureSchema(ctx)
}

func (s *PostgresStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load user collection: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan user document: %w", err)
		}
		var u models.User
		if err := json.Unmarshal(doc, &u); err != nil {
			return nil, fmt.Errorf("decode user document: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load user collection: %w", err)
	}

	if len(users) == 0 {
		seed := SeedUsers()
		if err := s.SaveUsers(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	return users, nil
}

func (s *PostgresStore) SaveUsers(ctx context.Context, users []*models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear user collection: %w", err)
	}

	const insert = `INSERT INTO users (id, username_lower, wallet_lower, created_at, doc)
VALUES ($1, $2, $3, $4, $5)`
	for _, u := range users {
		doc, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode user %s: %w", u.ID, err)
		}
		_, err = tx.ExecContext(ctx, insert,
			u.ID,
			strings.ToLower(u.Username),
			strings.ToLower(u.WalletAddress),
			u.CreatedAt,
			doc,
		)
		if err != nil {
			return fmt.Errorf("save user %s: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) LoadSession(ctx context.Context) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM session_pointer WHERE slot = 1`).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session pointer: %w", err)
	}
	return userID, nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO session_pointer (slot, user_id) VALUES (1, $1)
ON CONFLICT (slot) DO UPDATE SET user_id = EXCLUDED.user_id`, userID)
	if err != nil {
		return fmt.Errorf("save session pointer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_pointer`); err != nil {
		return fmt.Errorf("clear session pointer: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
