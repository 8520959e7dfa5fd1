package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
)

// RunRepository implements models.Repository[*models.PersistedRun] for run history.
//
// Handles run CRUD with soft delete support plus per-file result rows.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.PersistedRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, title, doc_id, doc_url, directory, file_count, status, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Title(),
		run.DocID(),
		run.DocURL(),
		run.Directory(),
		run.FileCount(),
		run.Status(),
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.PersistedRun, error) {
	query := `
		SELECT id, sequence, title, doc_id, doc_url, directory, file_count, status, started_at, finished_at, created_at, updated_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.PersistedRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET title = ?, status = ?, file_count = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Title(),
		run.Status(),
		run.FileCount(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "status".
func (r *RunRepository) List(criteria map[string]any) ([]*models.PersistedRun, error) {
	query := `
		SELECT id, sequence, title, doc_id, doc_url, directory, file_count, status, started_at, finished_at, created_at, updated_at
		FROM runs
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if status, ok := criteria["status"]; ok {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PersistedRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveResults inserts the per-file results of a run in input order.
func (r *RunRepository) SaveResults(runID string, results []models.ProcessingResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO run_results (id, run_id, position, file, text, doc_id, doc_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for i, result := range results {
		_, err := tx.Exec(query, shared.GenerateID(), runID, i, result.File, result.Text, result.DocID, result.DocURL, now)
		if err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetResults retrieves a run's per-file results in their original order.
func (r *RunRepository) GetResults(runID string) ([]models.ProcessingResult, error) {
	query := `
		SELECT file, text, doc_id, doc_url
		FROM run_results
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.ProcessingResult
	for rows.Next() {
		var result models.ProcessingResult
		if err := rows.Scan(&result.File, &result.Text, &result.DocID, &result.DocURL); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

// scanOne scans a single run row, mapping sql.ErrNoRows to a not-found error.
func (r *RunRepository) scanOne(row *sql.Row) (*models.PersistedRun, error) {
	run, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	return run, err
}

func (r *RunRepository) scanRow(row scannable) (*models.PersistedRun, error) {
	var (
		id, title, docID, docURL, directory, status string
		sequence, fileCount                         int
		startedAt, createdAt, updatedAt             time.Time
		finishedAt                                  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &title, &docID, &docURL, &directory, &fileCount, &status, &startedAt, &finishedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewPersistedRun(title, models.DocumentHandle{ID: docID, URL: docURL}, directory, fileCount, status, startedAt, finishedAt.Time)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetTimestamps(createdAt, updatedAt)

	return run, nil
}
