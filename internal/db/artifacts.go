package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveArtifact stores a JSON artifact for a run, replacing one with the same name
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, name string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, name, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, name) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, name, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and name. Returns nil, nil when absent.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, name string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND name = $2`,
		runID, name,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", name, err)
	}
	return content, nil
}

// SaveWarnings records the non-fatal diagnostics of a run in order
func (db *DB) SaveWarnings(ctx context.Context, runID uuid.UUID, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, w := range warnings {
		batch.Queue(
			`INSERT INTO run_warnings (run_id, position, message) VALUES ($1, $2, $3)
			 ON CONFLICT (run_id, position) DO UPDATE SET message = $3`,
			runID, i, w,
		)
	}

	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save warnings: %w", err)
	}
	return nil
}

// ListWarnings returns the diagnostics of a run in recorded order
func (db *DB) ListWarnings(ctx context.Context, runID uuid.UUID) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT message FROM run_warnings WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	defer rows.Close()

	warnings := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

// SavePackage stores the finished SCORM zip for a run
func (db *DB) SavePackage(ctx context.Context, runID uuid.UUID, fileCount int, zip []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO packages (run_id, file_count, size_bytes, zip)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id) DO UPDATE SET file_count = $2, size_bytes = $3, zip = $4, created_at = NOW()`,
		runID, fileCount, len(zip), zip,
	)
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// GetPackage retrieves the stored zip for a run. Returns nil, nil when none exists.
func (db *DB) GetPackage(ctx context.Context, runID uuid.UUID) (*PackageRecord, error) {
	var record PackageRecord
	err := db.pool.QueryRow(ctx,
		`SELECT run_id, file_count, size_bytes, zip, created_at FROM packages WHERE run_id = $1`,
		runID,
	).Scan(&record.RunID, &record.FileCount, &record.SizeBytes, &record.Zip, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &record, nil
}
