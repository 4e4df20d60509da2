package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carsome-scraper/config"
	"carsome-scraper/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CacheWriteError marks a failed cache write. It is degraded, not
// fatal: the caller still has the scraped result in memory and must
// surface it.
type CacheWriteError struct {
	Key string
	Err error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write for %s failed: %v", e.Key, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }

// PostgresCache persists one result blob per normalized query key.
type PostgresCache struct {
	pool *pgxpool.Pool
}

func NewPostgresCache(cfg *config.Config) (*PostgresCache, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresCache{pool: pool}, nil
}

func (c *PostgresCache) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *PostgresCache) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS scrape_cache (
		query_key TEXT PRIMARY KEY,
		result_blob BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := c.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Lookup returns the cached result for key, or (nil, nil) on a miss.
func (c *PostgresCache) Lookup(ctx context.Context, key string) (*models.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var blob []byte
	err := c.pool.QueryRow(ctx,
		`SELECT result_blob FROM scrape_cache WHERE query_key = $1`, key,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %s failed: %w", key, err)
	}

	rs, err := DecodeCSV(blob)
	if err != nil {
		return nil, fmt.Errorf("cache entry for %s is unreadable: %w", key, err)
	}
	return rs, nil
}

// Store upserts the result for key: at most one entry per query, and a
// new successful scrape replaces any prior one.
func (c *PostgresCache) Store(ctx context.Context, key string, rs *models.ResultSet) error {
	blob, err := EncodeCSV(rs)
	if err != nil {
		return &CacheWriteError{Key: key, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = c.pool.Exec(ctx, `
	INSERT INTO scrape_cache (query_key, result_blob, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (query_key) DO UPDATE
	SET result_blob = EXCLUDED.result_blob, created_at = EXCLUDED.created_at;
	`, key, blob, rs.ScrapedAt.UTC())
	if err != nil {
		return &CacheWriteError{Key: key, Err: err}
	}

	return nil
}
