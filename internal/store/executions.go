package store

import (
	"context"

	"github.com/google/uuid"
)

// StartExecution opens a pipeline run record.
func (s *Store) StartExecution(ctx context.Context) (*Execution, error) {
	const q = `INSERT INTO executions (status) VALUES ($1)
		RETURNING id, started_at, status, duration_seconds`
	var exec Execution
	err := s.pool.QueryRow(ctx, q, ExecutionRunning).
		Scan(&exec.ID, &exec.StartedAt, &exec.Status, &exec.DurationSeconds)
	if err != nil {
		return nil, err
	}
	return &exec, nil
}

// CompleteExecution marks a run finished with its total elapsed duration.
func (s *Store) CompleteExecution(ctx context.Context, id uuid.UUID, durationSeconds float64) error {
	const q = `UPDATE executions
		SET status = $1, completed_at = NOW(), duration_seconds = $2
		WHERE id = $3`
	_, err := s.pool.Exec(ctx, q, ExecutionCompleted, durationSeconds, id)
	return err
}

// FailExecution records an unrecoverable top-level error.
func (s *Store) FailExecution(ctx context.Context, id uuid.UUID, message string) error {
	const q = `UPDATE executions
		SET status = $1, completed_at = NOW(), error_message = $2
		WHERE id = $3`
	_, err := s.pool.Exec(ctx, q, ExecutionFailed, message, id)
	return err
}
