// Package postgres provides a PostgreSQL-backed catalog store.
//
// The uniqueness constraints the folder resolver relies on live in the
// database schema: a partial unique index on (volume_id) for roots, a
// unique index on (parent_id, name) for children and a unique index on
// (folder_id, filename) for assets. Unique-violation errors (SQLSTATE
// 23505) are translated to the catalog's ErrAlreadyExists code, so the
// create-then-recover flow works identically to the other backends.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarryfs/quarry/internal/logger"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// schema is the catalog schema. Folders and assets embed the tree and
// filename constraints directly; the resolver's race recovery depends on
// every backend enforcing them at the storage layer.
const schema = `
CREATE TABLE IF NOT EXISTS folders (
    id        UUID PRIMARY KEY,
    parent_id UUID NULL REFERENCES folders (id) ON DELETE CASCADE,
    volume_id TEXT NOT NULL,
    name      TEXT NOT NULL,
    path      TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS folders_volume_root
    ON folders (volume_id) WHERE parent_id IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS folders_parent_name
    ON folders (parent_id, name) WHERE parent_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS folders_volume_path
    ON folders (volume_id, path);

CREATE TABLE IF NOT EXISTS assets (
    id        UUID PRIMARY KEY,
    volume_id TEXT NOT NULL,
    folder_id UUID NOT NULL REFERENCES folders (id) ON DELETE CASCADE,
    filename  TEXT NOT NULL,
    title     TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS assets_folder_filename
    ON assets (folder_id, filename);
`

// PostgresStore is a PostgreSQL implementation of catalog.Store.
type PostgresStore struct {
	pool   *pgxpool.Pool
	config *PostgresStoreConfig
}

// NewPostgresStore creates a PostgreSQL-backed catalog store.
func NewPostgresStore(ctx context.Context, cfg *PostgresStoreConfig) (*PostgresStore, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	if cfg.QueryTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", cfg.QueryTimeout.Milliseconds())
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if cfg.AutoMigrate {
		if _, err := pool.Exec(ctx, schema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}

	logger.Info("postgres catalog store initialized",
		"host", cfg.Host,
		"database", cfg.Database,
		"max_conns", cfg.MaxConns,
	)

	return &PostgresStore{pool: pool, config: cfg}, nil
}

// HealthCheck pings the database.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// mapPgError translates pgx errors into catalog store errors.
func mapPgError(err error, path string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return catalogerrors.NewNotFoundError(path, "row")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return catalogerrors.NewConflictError(path)
	}

	return catalogerrors.NewIOError("postgres operation failed", err)
}
