package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DeleteOldAuditEvents deletes audit_log rows older than retentionDays and
// returns the number of rows deleted.
func DeleteOldAuditEvents(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (int64, error) {
	query := `
		DELETE FROM audit_log
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	tag, err := pool.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RunRetentionJob executes the audit-log cleanup and logs the result.
// This is the main entry point called by the cron scheduler.
func RunRetentionJob(ctx context.Context, pool *pgxpool.Pool, auditDays int) error {
	log.Info().
		Int("audit_retention_days", auditDays).
		Msg("Starting retention job")

	startTime := time.Now()

	deleted, err := DeleteOldAuditEvents(ctx, pool, auditDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete old audit events")
		return fmt.Errorf("audit log cleanup failed: %w", err)
	}

	log.Info().
		Int64("audit_events_deleted", deleted).
		Dur("duration", time.Since(startTime)).
		Msg("Retention job completed")

	return nil
}
