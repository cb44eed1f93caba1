// Package db provides PostgreSQL persistence for packaging runs and their outputs.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a referenced row does not exist
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables used by this package when they are missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, input RunInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO package_runs (kind, source_name, source_hash, course_title, scorm_version, completion, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		input.Kind, input.SourceName, input.SourceHash, input.CourseTitle, input.ScormVersion, input.Completion, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished. errorMsg is stored only for failed runs.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, itemCount int, errorMsg *string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE package_runs
		 SET status = $1, item_count = $2, error_message = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, itemCount, errorMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, kind, source_name, source_hash, course_title, scorm_version, completion,
	status, error_message, item_count, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Kind, &run.SourceName, &run.SourceHash, &run.CourseTitle,
		&run.ScormVersion, &run.Completion, &run.Status, &run.ErrorMessage, &run.ItemCount,
		&run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun retrieves a run by ID. Returns nil, nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM package_runs WHERE id = $1`, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// runsQuery builds the filtered listing query and its arguments
func runsQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + runColumns + ` FROM package_runs WHERE 1=1`)
	args := []any{}
	argNum := 1

	if filters.Kind != "" {
		sb.WriteString(fmt.Sprintf(" AND kind = $%d", argNum))
		args = append(args, filters.Kind)
		argNum++
	}
	if filters.Status != "" {
		sb.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, filters.Status)
		argNum++
	}

	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum))
	args = append(args, filters.Limit)

	return sb.String(), args
}

// ListRuns retrieves recent runs with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	query, args := runsQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and everything stored for it (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM package_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}
