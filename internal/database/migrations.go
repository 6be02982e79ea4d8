package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema creates the run history tables
const Schema = `
CREATE TABLE IF NOT EXISTS verification_runs (
	id UUID PRIMARY KEY,
	base_url TEXT NOT NULL,
	browser VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL,
	error TEXT,
	started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_verification_runs_started_at ON verification_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS check_results (
	run_id UUID NOT NULL REFERENCES verification_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name VARCHAR(255) NOT NULL,
	status VARCHAR(20) NOT NULL,
	message TEXT,
	duration_ms BIGINT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	return Migrate(DB)
}

// Migrate applies Schema to db
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create run history tables: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
