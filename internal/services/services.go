// package services defines interfaces and clients for the external providers
//
// OpenAI (speech-to-text + text cleanup), Google Docs/Drive (document output)
package services

import (
	"context"

	"github.com/lukestiles/voice-memo-to-doc/internal/models"
)

// Transcription defines the speech-to-text and text-cleanup provider surface.
type Transcription interface {
	// Transcribe converts the audio file at path into raw text.
	Transcribe(ctx context.Context, path string) (string, error)

	// Clean normalizes raw transcription text in bounded chunks.
	// On any chunk failure the whole call fails with no partial text.
	Clean(ctx context.Context, text string) (string, error)

	// Name returns the provider name (e.g. "OpenAI")
	Name() string
}

// Documents defines the document provider surface.
type Documents interface {
	// CreateDocument creates the run's single target document.
	CreateDocument(ctx context.Context, title string) (*models.DocumentHandle, error)

	// AppendText inserts text just before the document's trailing implicit newline.
	AppendText(ctx context.Context, handle *models.DocumentHandle, text string) error

	// Name returns the provider name (e.g. "Google Docs")
	Name() string
}
