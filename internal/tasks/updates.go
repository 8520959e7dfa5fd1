package tasks

import (
	"fmt"

	"github.com/lukestiles/voice-memo-to-doc/internal/models"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current file number (1-based), 0 for run-level events
	Total   int    // Total files in the run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CreateDocument Phase = iota
	Transcribe
	CleanText
	AppendText
	FileDone
)

func (p Phase) String() string {
	switch p {
	case CreateDocument:
		return "create_document"
	case Transcribe:
		return "transcribe"
	case CleanText:
		return "clean_text"
	case AppendText:
		return "append_text"
	case FileDone:
		return "file_done"
	default:
		return ""
	}
}

func creatingDocumentUpdate(title string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateDocument,
		Total:   total,
		Message: fmt.Sprintf("Creating document %q...", title),
	}
}

func documentCreatedUpdate(handle *models.DocumentHandle, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateDocument,
		Total:   total,
		Message: fmt.Sprintf("Document created: %s", handle.URL),
		Data:    handle,
	}
}

func transcribeUpdate(step, total int, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transcribe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Transcribing %s...", step, total, file),
	}
}

func cleanUpdate(step, total int, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CleanText,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Cleaning transcription of %s...", step, total, file),
	}
}

func appendUpdate(step, total int, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendText,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Appending %s to document...", step, total, file),
	}
}

func fileDoneUpdate(step, total int, result models.ProcessingResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FileDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, result.File),
		Data:    result,
	}
}
