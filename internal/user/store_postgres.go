package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signet/pkg/platform/sentinel"
)

// PostgresStore resolves users from Postgres.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id            TEXT PRIMARY KEY,
//	    username      TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    totp_secret   TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a Postgres-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findBy(ctx, "username", username)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findBy(ctx, "id", id)
}

func (s *PostgresStore) findBy(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, totp_secret, created_at
		FROM users
		WHERE %s = $1`, column)

	var u User
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.TOTPSecret,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s=%q: %w", column, value, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return &u, nil
}
