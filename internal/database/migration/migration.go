// Package migration creates the schema backing the Postgres rate-limit store.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"doccompare/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_rate_limits",
		SQL: `CREATE TABLE IF NOT EXISTS rate_limits (
  key        TEXT        PRIMARY KEY,
  count      BIGINT      NOT NULL DEFAULT 0 CHECK (count >= 0),
  expires_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_rate_limits_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_rate_limits_expires_at ON rate_limits (expires_at);`,
	},
}

const sentinelQuery = "SELECT to_regclass('public.rate_limits') IS NOT NULL"

// EnsureMigrated checks if the 'rate_limits' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()
	entry := func(fields map[string]any) map[string]any {
		fields["component"] = "database"
		fields["db_host"] = dbHost
		return fields
	}

	log.Log(entry(map[string]any{"event": "db_migration_check", "status": "starting"}))

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		log.Log(entry(map[string]any{
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms":   time.Since(start).Milliseconds(),
		}))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Log(entry(map[string]any{
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"duration_ms": time.Since(start).Milliseconds(),
		}))
		return nil
	}

	log.Log(entry(map[string]any{"event": "db_migration_start", "status": "in_progress"}))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Log(entry(map[string]any{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Log(entry(map[string]any{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}))
	}

	log.Log(entry(map[string]any{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}))
	return nil
}
