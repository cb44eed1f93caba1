package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Step statuses
const (
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusFailed     = "failed"
)

// RunStep is one pipeline stage of a packaging run
type RunStep struct {
	ID           uuid.UUID  `json:"id"`
	RunID        uuid.UUID  `json:"run_id"`
	Step         string     `json:"step"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMs   *int       `json:"duration_ms,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// StartRunStep records a step as in progress. Restarting a step clears its previous outcome.
func (db *DB) StartRunStep(ctx context.Context, runID uuid.UUID, step string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_steps (run_id, step, status, started_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET status = EXCLUDED.status, started_at = NOW(), completed_at = NULL,
		     duration_ms = NULL, error_message = NULL`,
		runID, step, StepStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to start run step %s: %w", step, err)
	}
	return nil
}

// FinishRunStep marks a started step completed or failed; the database measures its duration
func (db *DB) FinishRunStep(ctx context.Context, runID uuid.UUID, step string, status string, errorMsg *string) error {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`UPDATE run_steps
		 SET status = $1, completed_at = NOW(), error_message = $2,
		     duration_ms = (EXTRACT(EPOCH FROM (NOW() - started_at)) * 1000)::INTEGER
		 WHERE run_id = $3 AND step = $4
		 RETURNING id`,
		status, errorMsg, runID, step,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("step %s: %w", step, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to finish run step %s: %w", step, err)
	}
	return nil
}

// ListRunSteps retrieves all steps for a run in the order they started
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, step, status, started_at, completed_at, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = $1 ORDER BY created_at, step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}

	steps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunStep, error) {
		var s RunStep
		err := row.Scan(&s.ID, &s.RunID, &s.Step, &s.Status, &s.StartedAt,
			&s.CompletedAt, &s.DurationMs, &s.ErrorMessage, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan run steps: %w", err)
	}
	return steps, nil
}
