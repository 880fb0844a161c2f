package store

import (
	"context"
)

// InsertResourceUsage appends one telemetry row. Rows are never mutated.
func (s *Store) InsertResourceUsage(ctx context.Context, u *ResourceUsage) error {
	const q = `INSERT INTO resource_usage (execution_id, group_key, storage_mb, tokens_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, u.ExecutionID, u.GroupKey, u.StorageMB, u.TokensUsed).
		Scan(&u.ID, &u.CreatedAt)
}

// InsertErrorLog appends one error row tied to an execution.
func (s *Store) InsertErrorLog(ctx context.Context, e *ErrorLog) error {
	const q = `INSERT INTO error_logs (execution_id, scope, message, requires_reauth)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, e.ExecutionID, e.Scope, e.Message, e.RequiresReauth).
		Scan(&e.ID, &e.CreatedAt)
}
