// package tasks implements the audio-to-document processing pipeline.
//
// The core abstraction is Engine, which turns a batch of audio files into a
// single cleaned, formatted document. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/formatter"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/services"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
)

// RunResult contains all data from a completed run.
type RunResult struct {
	Title      string                    // Resolved document title
	Document   models.DocumentHandle     // The run's single target document
	Results    []models.ProcessingResult // Per-file results in input order
	StartedAt  time.Time                 // When the run began
	FinishedAt time.Time                 // When the last append completed
}

// Engine defines the processing pipeline operation.
type Engine interface {
	// Run processes files in input order: transcribe, clean, format, append.
	// The first failure aborts the run; prior appends remain in the document.
	Run(ctx context.Context, progress chan<- ProgressUpdate, files []string, directory, outputTitle string) (*RunResult, error)
}

// Processor implements Engine over the transcription and document providers.
//
// Execution is strictly sequential: one file's full pipeline completes
// before the next begins, and appends never run concurrently.
type Processor struct {
	transcription services.Transcription
	documents     services.Documents
	logger        *log.Logger
	now           func() time.Time
}

// NewProcessor creates a Processor with the provided services.
func NewProcessor(transcription services.Transcription, documents services.Documents, logger *log.Logger) *Processor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Processor{
		transcription: transcription,
		documents:     documents,
		logger:        logger,
		now:           time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (p *Processor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes the pipeline over files found under directory.
//
// outputTitle defaults to the current timestamp. Processing is not
// transactional across files: if file N fails at any stage, files 1..N-1
// remain appended to the document and files N+1.. are never attempted; the
// error is returned with no partial result list.
func (p *Processor) Run(ctx context.Context, progress chan<- ProgressUpdate, files []string, directory, outputTitle string) (*RunResult, error) {
	if p.transcription == nil {
		return nil, fmt.Errorf("%w: transcription service not initialized", shared.ErrServiceUnavailable)
	}
	if p.documents == nil {
		return nil, fmt.Errorf("%w: document service not initialized", shared.ErrServiceUnavailable)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to process", shared.ErrMissingArgument)
	}

	startedAt := p.now()

	title := outputTitle
	if title == "" {
		title = formatter.DefaultTitle(startedAt)
	}

	total := len(files)
	p.sendProgress(progress, creatingDocumentUpdate(title, total))

	handle, err := p.documents.CreateDocument(ctx, title)
	if err != nil {
		return nil, err
	}
	p.sendProgress(progress, documentCreatedUpdate(handle, total))

	// All log lines for this run carry the document ID.
	logger := shared.WithLogger(p.logger, "doc_id", handle.ID)
	logger.Info("created run document", "title", title)

	results := make([]models.ProcessingResult, 0, total)

	for i, file := range files {
		step := i + 1
		path := filepath.Join(directory, file)

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrFileNotFound, path, err)
		}

		p.sendProgress(progress, transcribeUpdate(step, total, file))
		text, err := p.transcription.Transcribe(ctx, path)
		if err != nil {
			return nil, err
		}

		p.sendProgress(progress, cleanUpdate(step, total, file))
		cleaned, err := p.transcription.Clean(ctx, text)
		if err != nil {
			return nil, err
		}

		formatted := formatter.FormatEntry(file, info.ModTime(), cleaned)

		p.sendProgress(progress, appendUpdate(step, total, file))
		if err := p.documents.AppendText(ctx, handle, formatted); err != nil {
			return nil, err
		}

		result := models.ProcessingResult{
			File:   file,
			Text:   cleaned,
			DocID:  handle.ID,
			DocURL: handle.URL,
		}
		results = append(results, result)
		p.sendProgress(progress, fileDoneUpdate(step, total, result))
		logger.Info("processed file", "file", file)
	}

	return &RunResult{
		Title:      title,
		Document:   *handle,
		Results:    results,
		StartedAt:  startedAt,
		FinishedAt: p.now(),
	}, nil
}
