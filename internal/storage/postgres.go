package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the postgres store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps values in the client_storage table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a PostgresStore on top of a pool.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	sql := `SELECT value FROM client_storage WHERE namespace = $1 AND key = $2`
	err := p.db.QueryRow(ctx, sql, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read client storage: %w", err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, namespace, key, value string) error {
	sql := `INSERT INTO client_storage (namespace, key, value, updated_at)
            VALUES ($1, $2, $3, now())
            ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := p.db.Exec(ctx, sql, namespace, key, value); err != nil {
		return fmt.Errorf("failed to write client storage: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, namespace, key string) error {
	sql := `DELETE FROM client_storage WHERE namespace = $1 AND key = $2`
	if _, err := p.db.Exec(ctx, sql, namespace, key); err != nil {
		return fmt.Errorf("failed to delete client storage: %w", err)
	}
	return nil
}
