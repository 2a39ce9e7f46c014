package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"doccompare/internal/repository"
)

// RateLimitPostgres is a PostgreSQL implementation of repository.RateLimitRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RateLimitPostgres struct {
	db *sql.DB
}

// NewRateLimitPostgres creates a new RateLimitPostgres repository.
func NewRateLimitPostgres(db *sql.DB) *RateLimitPostgres {
	return &RateLimitPostgres{db: db}
}

var _ repository.RateLimitRepository = (*RateLimitPostgres)(nil)

// Increment upserts the counter row. A row left over from an expired window is restarted at one.
// The conflicting row is locked by the upsert, so the ceiling check cannot race another increment.
// ceiling must be at least one: a missing row is always inserted.
func (r *RateLimitPostgres) Increment(ctx context.Context, key string, ceiling int64, expiresAt time.Time) (int64, bool, error) {
	const q = `
		INSERT INTO rate_limits (key, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE
		SET count = CASE WHEN rate_limits.expires_at <= now() THEN 1 ELSE rate_limits.count + 1 END,
		    expires_at = EXCLUDED.expires_at
		WHERE rate_limits.expires_at <= now() OR rate_limits.count < $3
		RETURNING count
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, key, expiresAt, ceiling).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// Count returns the live counter for key.
func (r *RateLimitPostgres) Count(ctx context.Context, key string) (int64, error) {
	const q = `
		SELECT count
		FROM rate_limits
		WHERE key = $1 AND expires_at > now()
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// PurgeExpired removes rows whose window can no longer be read.
func (r *RateLimitPostgres) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM rate_limits WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
