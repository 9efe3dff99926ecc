package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/triptech/fleetd/internal/retention"
)

func TestRetention_DeletesOnlyExpiredAuditEvents(t *testing.T) {
	pool, cleanup := newTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO audit_log (action, created_at) VALUES
			('auth.login_failed', NOW() - INTERVAL '200 days'),
			('auth.login_failed', NOW() - INTERVAL '181 days'),
			('invite.sent', NOW() - INTERVAL '10 days'),
			('invite.sent', NOW())
	`)
	require.NoError(t, err)

	deleted, err := retention.DeleteOldAuditEvents(ctx, pool, 180)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	var remaining int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM audit_log`).Scan(&remaining))
	require.Equal(t, 2, remaining)

	// Running again is a no-op.
	deleted, err = retention.DeleteOldAuditEvents(ctx, pool, 180)
	require.NoError(t, err)
	require.Zero(t, deleted)

	require.NoError(t, retention.RunRetentionJob(ctx, pool, 180))
}
