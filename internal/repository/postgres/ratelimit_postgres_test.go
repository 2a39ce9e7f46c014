package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitPostgres_Increment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRateLimitPostgres(db)
	ctx := context.Background()
	expiresAt := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rate_limits (.+) ON CONFLICT \\(key\\) DO UPDATE (.+) WHERE (.+) rate_limits.count < (.+) RETURNING count").
			WithArgs("@alira_ratelimit:10.0.0.1:20574", expiresAt, int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		n, ok, err := repo.Increment(ctx, "@alira_ratelimit:10.0.0.1:20574", 5, expiresAt)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), n)
	})

	t.Run("ceiling reached leaves the row untouched", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rate_limits").
			WithArgs("k", expiresAt, int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}))

		n, ok, err := repo.Increment(ctx, "k", 2, expiresAt)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, n)
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rate_limits").
			WithArgs("k", expiresAt, int64(5)).
			WillReturnError(errors.New("connection reset"))

		n, ok, err := repo.Increment(ctx, "k", 5, expiresAt)

		assert.Error(t, err)
		assert.False(t, ok)
		assert.Zero(t, n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitPostgres_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRateLimitPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT count FROM rate_limits WHERE key = (.+) AND expires_at > now\\(\\)").
			WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		n, err := repo.Count(ctx, "k")

		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("missing counts as zero", func(t *testing.T) {
		mock.ExpectQuery("SELECT count FROM rate_limits").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		n, err := repo.Count(ctx, "missing")

		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectQuery("SELECT count FROM rate_limits").
			WithArgs("k").
			WillReturnError(errors.New("timeout"))

		_, err := repo.Count(ctx, "k")

		assert.EqualError(t, err, "timeout")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitPostgres_PurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRateLimitPostgres(db)
	now := time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM rate_limits WHERE expires_at <= ?").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.PurgeExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
