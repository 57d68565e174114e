package database

import (
	"context"
	"fmt"

	"github.com/yourusername/odds-aggregator/internal/config"
)

// Core tables the repositories depend on.
var requiredTables = []string{"games", "bookmakers", "odds", "line_movements"}

// Initialize creates a database connection pool and verifies the schema is
// in place.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, err
	}

	for _, table := range requiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to check schema: %w", err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("table %s not found, run database migrations first", table)
		}
	}

	return db, nil
}
