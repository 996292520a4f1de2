package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ekip-platform/ekip-api/config"
	_ "github.com/lib/pq"
)

// NewConnection opens the database/sql pool used by the RPC-backed
// repositories (allocations, time entries).
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen := cfg.MaxConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
