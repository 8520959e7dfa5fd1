package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lukestiles/voice-memo-to-doc/internal/formatter"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	mocks "github.com/lukestiles/voice-memo-to-doc/internal/testing"
)

// writeAudioFiles creates fake recordings and returns the directory.
func writeAudioFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func newTestProcessor(transcription *mocks.MockTranscription, documents *mocks.MockDocuments) *Processor {
	p := NewProcessor(transcription, documents, shared.NewLogger(os.Stderr))
	p.now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) }
	return p
}

func TestProcessor_Run(t *testing.T) {
	t.Run("processes files in order into one document", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3", "b.mp3")

		transcription := &mocks.MockTranscription{
			TranscribeFn: func(ctx context.Context, path string) (string, error) {
				return "raw " + filepath.Base(path), nil
			},
			CleanFn: func(ctx context.Context, text string) (string, error) {
				return "clean " + text, nil
			},
		}
		documents := &mocks.MockDocuments{
			Handle: models.DocumentHandle{ID: "doc-1", URL: "https://docs.google.com/document/d/doc-1/edit"},
		}

		p := newTestProcessor(transcription, documents)

		result, err := p.Run(context.Background(), nil, []string{"a.mp3", "b.mp3"}, dir, "My Memos")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Title != "My Memos" {
			t.Errorf("expected supplied title, got %q", result.Title)
		}
		if result.Document.ID != "doc-1" {
			t.Errorf("expected doc-1, got %q", result.Document.ID)
		}

		if len(result.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(result.Results))
		}
		for i, want := range []string{"a.mp3", "b.mp3"} {
			got := result.Results[i]
			if got.File != want {
				t.Errorf("result %d: expected file %q, got %q", i, want, got.File)
			}
			if got.Text != "clean raw "+want {
				t.Errorf("result %d: unexpected text %q", i, got.Text)
			}
			if got.DocID != "doc-1" || got.DocURL != result.Document.URL {
				t.Errorf("result %d: expected all results to share the run document", i)
			}
		}

		if len(documents.Appended) != 2 {
			t.Fatalf("expected 2 appends, got %d", len(documents.Appended))
		}
		for i, want := range []string{"a.mp3", "b.mp3"} {
			if !strings.HasPrefix(documents.Appended[i], want+" ") {
				t.Errorf("append %d should start with the file header, got %q", i, documents.Appended[i])
			}
			if !strings.Contains(documents.Appended[i], "clean raw "+want) {
				t.Errorf("append %d missing cleaned text: %q", i, documents.Appended[i])
			}
			if !strings.HasSuffix(documents.Appended[i], "\n---\n\n") {
				t.Errorf("append %d missing entry separator: %q", i, documents.Appended[i])
			}
		}
	})

	t.Run("empty title defaults to start timestamp", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3")
		documents := &mocks.MockDocuments{Handle: models.DocumentHandle{ID: "doc-1"}}

		p := newTestProcessor(&mocks.MockTranscription{}, documents)

		result, err := p.Run(context.Background(), nil, []string{"a.mp3"}, dir, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := formatter.DefaultTitle(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC))
		if result.Title != want {
			t.Errorf("expected default title %q, got %q", want, result.Title)
		}
	})

	t.Run("second file failure aborts, first append remains", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3", "b.mp3")

		transcription := &mocks.MockTranscription{
			CleanFn: func(ctx context.Context, text string) (string, error) {
				if strings.Contains(text, "b.mp3") {
					return "", fmt.Errorf("%w: chunk 1 of 1: boom", shared.ErrCleanup)
				}
				return text, nil
			},
			TranscribeFn: func(ctx context.Context, path string) (string, error) {
				return filepath.Base(path), nil
			},
		}
		documents := &mocks.MockDocuments{Handle: models.DocumentHandle{ID: "doc-1"}}

		p := newTestProcessor(transcription, documents)

		result, err := p.Run(context.Background(), nil, []string{"a.mp3", "b.mp3"}, dir, "")
		if !errors.Is(err, shared.ErrCleanup) {
			t.Fatalf("expected ErrCleanup, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no partial result list, got %+v", result)
		}
		if len(documents.Appended) != 1 {
			t.Errorf("expected the first append to remain, got %d appends", len(documents.Appended))
		}
	})

	t.Run("missing file aborts before any provider call", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3")

		transcribed := false
		transcription := &mocks.MockTranscription{
			TranscribeFn: func(ctx context.Context, path string) (string, error) {
				transcribed = true
				return "", nil
			},
		}
		documents := &mocks.MockDocuments{Handle: models.DocumentHandle{ID: "doc-1"}}

		p := newTestProcessor(transcription, documents)

		_, err := p.Run(context.Background(), nil, []string{"missing.mp3"}, dir, "")
		if !errors.Is(err, shared.ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound, got %v", err)
		}
		if transcribed {
			t.Error("transcription should not run for a missing file")
		}
	})

	t.Run("document creation failure aborts the run", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3")
		documents := &mocks.MockDocuments{CreateErr: fmt.Errorf("%w: create document: status 403", shared.ErrDocument)}

		p := newTestProcessor(&mocks.MockTranscription{}, documents)

		_, err := p.Run(context.Background(), nil, []string{"a.mp3"}, dir, "")
		if !errors.Is(err, shared.ErrDocument) {
			t.Errorf("expected ErrDocument, got %v", err)
		}
	})

	t.Run("validates inputs and services", func(t *testing.T) {
		dir := writeAudioFiles(t)

		tests := []struct {
			name    string
			p       *Processor
			files   []string
			wantErr error
		}{
			{
				name:    "nil transcription",
				p:       NewProcessor(nil, &mocks.MockDocuments{}, nil),
				files:   []string{"a.mp3"},
				wantErr: shared.ErrServiceUnavailable,
			},
			{
				name:    "nil documents",
				p:       NewProcessor(&mocks.MockTranscription{}, nil, nil),
				files:   []string{"a.mp3"},
				wantErr: shared.ErrServiceUnavailable,
			},
			{
				name:    "no files",
				p:       NewProcessor(&mocks.MockTranscription{}, &mocks.MockDocuments{}, nil),
				files:   nil,
				wantErr: shared.ErrMissingArgument,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.p.Run(context.Background(), nil, tt.files, dir, "")
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("emits ordered progress updates without blocking", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3")
		documents := &mocks.MockDocuments{Handle: models.DocumentHandle{ID: "doc-1"}}

		p := newTestProcessor(&mocks.MockTranscription{}, documents)

		progress := make(chan ProgressUpdate, 50)
		if _, err := p.Run(context.Background(), progress, []string{"a.mp3"}, dir, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		want := []Phase{CreateDocument, CreateDocument, Transcribe, CleanText, AppendText, FileDone}
		if len(phases) != len(want) {
			t.Fatalf("expected %d updates, got %d: %v", len(want), len(phases), phases)
		}
		for i, phase := range want {
			if phases[i] != phase {
				t.Errorf("update %d: expected phase %s, got %s", i, phase, phases[i])
			}
		}
	})

	t.Run("full progress channel never blocks the run", func(t *testing.T) {
		dir := writeAudioFiles(t, "a.mp3", "b.mp3")
		documents := &mocks.MockDocuments{Handle: models.DocumentHandle{ID: "doc-1"}}

		p := newTestProcessor(&mocks.MockTranscription{}, documents)

		// Capacity 1 and no consumer: most updates are dropped, none block.
		progress := make(chan ProgressUpdate, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := p.Run(context.Background(), progress, []string{"a.mp3", "b.mp3"}, dir, ""); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("run blocked on progress channel")
		}
	})
}
