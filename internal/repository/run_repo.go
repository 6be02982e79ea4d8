package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ghautomation/testpage/internal/database"
	"github.com/ghautomation/testpage/internal/models"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run matches the requested ID
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for verification runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository on the shared connection
func NewRunRepository() *RunRepository {
	return &RunRepository{
		db: database.DB,
	}
}

// NewRunRepositoryWithDB creates a new run repository with a specific database connection
func NewRunRepositoryWithDB(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun inserts a run in its initial state
func (r *RunRepository) CreateRun(run *models.VerificationRun) error {
	query := `
		INSERT INTO verification_runs (id, base_url, browser, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(query, run.ID, run.BaseURL, run.Browser, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// CompleteRun stores the final status of a run together with its check results
func (r *RunRepository) CompleteRun(run *models.VerificationRun) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE verification_runs
		SET status = $1, error = NULLIF($2, ''), finished_at = $3
		WHERE id = $4
	`, run.Status, run.Error, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	for i, check := range run.Checks {
		_, err := tx.Exec(`
			INSERT INTO check_results (run_id, position, name, status, message, duration_ms)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		`, run.ID, i, check.Name, check.Status, check.Message, check.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to insert check result %q: %w", check.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRunByID retrieves a run and its check results
func (r *RunRepository) GetRunByID(id string) (*models.VerificationRun, error) {
	// Run IDs are UUIDs; anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}

	query := `
		SELECT id, base_url, browser, status, COALESCE(error, ''), started_at, finished_at
		FROM verification_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	checks, err := r.checksForRun(run.ID)
	if err != nil {
		return nil, err
	}
	run.Checks = checks

	return run, nil
}

// ListRecentRuns returns the newest runs first, without their check results
func (r *RunRepository) ListRecentRuns(limit int) ([]*models.VerificationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, base_url, browser, status, COALESCE(error, ''), started_at, finished_at
		FROM verification_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.VerificationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) checksForRun(runID string) ([]models.CheckResult, error) {
	rows, err := r.db.Query(`
		SELECT name, status, COALESCE(message, ''), duration_ms
		FROM check_results
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get check results: %w", err)
	}
	defer rows.Close()

	var checks []models.CheckResult
	for rows.Next() {
		var c models.CheckResult
		var durationMs int64
		if err := rows.Scan(&c.Name, &c.Status, &c.Message, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan check result: %w", err)
		}
		c.Duration = time.Duration(durationMs) * time.Millisecond
		checks = append(checks, c)
	}

	return checks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.VerificationRun, error) {
	run := &models.VerificationRun{}
	var finishedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.BaseURL,
		&run.Browser,
		&run.Status,
		&run.Error,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}
