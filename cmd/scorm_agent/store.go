package main

import (
	"context"
	"fmt"

	"github.com/jonathan/scorm-packager/internal/db"
)

// connectStore opens run history storage. An empty URL disables it.
func connectStore(ctx context.Context, databaseURL string) (*db.DB, func(), error) {
	if databaseURL == "" {
		return nil, func() {}, nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	return database, database.Close, nil
}
