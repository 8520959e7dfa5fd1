// package models defines the data model for the voice memo transcription service
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// DocumentHandle identifies the single target document of a run.
//
// Created once per run by the document service and shared read-only across
// all per-file append calls.
type DocumentHandle struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProcessingResult is the outcome of one fully processed audio file.
//
// Immutable once created; results are collected in input-file order.
type ProcessingResult struct {
	File   string `json:"file"`
	Text   string `json:"transcription_text"`
	DocID  string `json:"doc_id"`
	DocURL string `json:"doc_url"`
}

// Run status values persisted with each run record.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PersistedRun is a run record stored in the local history database.
type PersistedRun struct {
	id         string
	sequence   int
	title      string
	docID      string
	docURL     string
	directory  string
	fileCount  int
	status     string
	startedAt  time.Time
	finishedAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPersistedRun creates a run record for persistence.
// The ID is assigned by the repository on Create.
func NewPersistedRun(title string, doc DocumentHandle, directory string, fileCount int, status string, startedAt, finishedAt time.Time) *PersistedRun {
	now := time.Now()
	return &PersistedRun{
		title:      title,
		docID:      doc.ID,
		docURL:     doc.URL,
		directory:  directory,
		fileCount:  fileCount,
		status:     status,
		startedAt:  startedAt,
		finishedAt: finishedAt,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (r *PersistedRun) ID() string            { return r.id }
func (r *PersistedRun) Sequence() int         { return r.sequence }
func (r *PersistedRun) Title() string         { return r.title }
func (r *PersistedRun) DocID() string         { return r.docID }
func (r *PersistedRun) DocURL() string        { return r.docURL }
func (r *PersistedRun) Directory() string     { return r.directory }
func (r *PersistedRun) FileCount() int        { return r.fileCount }
func (r *PersistedRun) Status() string        { return r.status }
func (r *PersistedRun) StartedAt() time.Time  { return r.startedAt }
func (r *PersistedRun) FinishedAt() time.Time { return r.finishedAt }
func (r *PersistedRun) CreatedAt() time.Time  { return r.createdAt }
func (r *PersistedRun) UpdatedAt() time.Time  { return r.updatedAt }

func (r *PersistedRun) SetID(id string)          { r.id = id }
func (r *PersistedRun) SetSequence(seq int)      { r.sequence = seq }
func (r *PersistedRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *PersistedRun) SetTimestamps(c, u time.Time) {
	r.createdAt = c
	r.updatedAt = u
}

// Validate checks required run fields.
//
// A failed run may have no document: the pipeline aborts before or during
// document creation, so only completed runs require a doc_id.
func (r *PersistedRun) Validate() error {
	if r.title == "" {
		return fmt.Errorf("run title is required")
	}
	if r.status != RunStatusCompleted && r.status != RunStatusFailed {
		return fmt.Errorf("invalid run status: %s", r.status)
	}
	if r.status == RunStatusCompleted && r.docID == "" {
		return fmt.Errorf("run doc_id is required")
	}
	return nil
}
