// Package limiter provides a shared, TTL-bounded attempt counter. The
// store-backed implementation keeps failed-login tracking correct across
// multiple service instances; process memory is never the source of truth.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"
)

type AttemptCounter interface {
	// Incr bumps the counter for key and returns the new value. A counter
	// whose TTL window elapsed restarts from 1.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

type pgCounter struct {
	db *dbpg.DB
}

func NewPostgresCounter(db *dbpg.DB) AttemptCounter {
	return &pgCounter{db: db}
}

func (c *pgCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	query := `
		INSERT INTO login_attempts (attempt_key, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (attempt_key) DO UPDATE
		SET count = CASE
		        WHEN login_attempts.expires_at < NOW() THEN 1
		        ELSE login_attempts.count + 1
		    END,
		    expires_at = CASE
		        WHEN login_attempts.expires_at < NOW() THEN EXCLUDED.expires_at
		        ELSE login_attempts.expires_at
		    END
		RETURNING count
	`
	var count int
	if err := c.db.QueryRowContext(ctx, query, key, time.Now().Add(ttl)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}
	return count, nil
}

func (c *pgCounter) Reset(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE attempt_key = $1`, key); err != nil {
		return fmt.Errorf("failed to reset attempt counter: %w", err)
	}
	return nil
}
