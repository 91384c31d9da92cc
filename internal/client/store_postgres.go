package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"signet/pkg/platform/sentinel"
)

// PostgresDirectory resolves client registrations from Postgres.
//
// Expected schema:
//
//	CREATE TABLE clients (
//	    client_id      TEXT PRIMARY KEY,
//	    name           TEXT NOT NULL,
//	    redirect_uris  TEXT[] NOT NULL,
//	    response_types TEXT[] NOT NULL DEFAULT '{code,token}',
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgres constructs a Postgres-backed directory.
func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) FindByClientID(ctx context.Context, clientID string) (*Client, error) {
	const query = `
		SELECT client_id, name, redirect_uris, response_types, created_at
		FROM clients
		WHERE client_id = $1`

	var c Client
	err := d.db.QueryRowContext(ctx, query, clientID).Scan(
		&c.ClientID,
		&c.Name,
		pq.Array(&c.RedirectURIs),
		pq.Array(&c.ResponseTypes),
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %q: %w", clientID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find client %q: %w", clientID, err)
	}
	return &c, nil
}
