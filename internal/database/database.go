package database

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/polymarket-book/internal/config"
)

// Table is the archive table name.
const Table = "book_samples"

// Columns lists the archive columns in insert order.
var Columns = []string{
	"session_id",
	"sampled_at",
	"asset_id",
	"outcome",
	"best_bid",
	"best_ask",
	"bid_size",
	"ask_size",
	"status",
}

// Schema creates the archive table when it is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS book_samples (
	session_id  UUID        NOT NULL,
	sampled_at  TIMESTAMPTZ NOT NULL,
	asset_id    TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	best_bid    NUMERIC,
	best_ask    NUMERIC,
	bid_size    NUMERIC,
	ask_size    NUMERIC,
	status      TEXT        NOT NULL
)`

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the archive table.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create archive table: %w", err)
	}
	return nil
}
