package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sport VARCHAR(100) NOT NULL,
		level VARCHAR(100) NOT NULL,
		date_info TEXT[],
		registration_deadline TEXT,
		venue TEXT[],
		link VARCHAR(500),
		streaming_links TEXT,
		summary TEXT,
		entry_fees VARCHAR(255),
		contact_information TEXT[],
		eligibility TEXT[],
		prizes TEXT[],
		confidence_score NUMERIC(3,2),
		source_url VARCHAR(500),
		source_sport VARCHAR(100),
		source_level VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT unique_tournament UNIQUE (name, sport, level)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_sport ON tournaments (sport)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_level ON tournaments (level)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_confidence ON tournaments (confidence_score)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_created ON tournaments (created_at)`,
	`CREATE TABLE IF NOT EXISTS search_logs (
		id BIGSERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		sport VARCHAR(100),
		level VARCHAR(100),
		results_found INT NOT NULL DEFAULT 0,
		execution_time NUMERIC(10,3),
		success BOOLEAN NOT NULL DEFAULT TRUE,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_logs_sport_level ON search_logs (sport, level)`,
	`CREATE INDEX IF NOT EXISTS idx_search_logs_created ON search_logs (created_at)`,
	`CREATE TABLE IF NOT EXISTS pipeline_statistics (
		id BIGSERIAL PRIMARY KEY,
		total_queries INT NOT NULL DEFAULT 0,
		total_search_results INT NOT NULL DEFAULT 0,
		total_scraped_pages INT NOT NULL DEFAULT 0,
		total_tournaments_extracted INT NOT NULL DEFAULT 0,
		average_confidence_score NUMERIC(3,2),
		pipeline_run_date DATE,
		execution_time_seconds INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pipeline_statistics_run_date ON pipeline_statistics (pipeline_run_date)`,
}

// EnsureSchema creates the tables and indexes the pipeline writes to.
// Statements are idempotent so startup can run this unconditionally.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
