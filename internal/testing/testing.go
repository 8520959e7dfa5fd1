// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/lukestiles/voice-memo-to-doc/internal/models"
)

// MockTranscription is a test double for [services.Transcription]
type MockTranscription struct {
	TranscribeFn func(ctx context.Context, path string) (string, error)
	CleanFn      func(ctx context.Context, text string) (string, error)
}

func (m *MockTranscription) Transcribe(ctx context.Context, path string) (string, error) {
	if m.TranscribeFn != nil {
		return m.TranscribeFn(ctx, path)
	}
	return "", nil
}

func (m *MockTranscription) Clean(ctx context.Context, text string) (string, error) {
	if m.CleanFn != nil {
		return m.CleanFn(ctx, text)
	}
	return text, nil
}

func (m *MockTranscription) Name() string { return "mock" }

// MockDocuments is a test double for [services.Documents] that records appends.
type MockDocuments struct {
	Handle    models.DocumentHandle
	Appended  []string
	CreateErr error
	AppendErr error
}

func (m *MockDocuments) CreateDocument(ctx context.Context, title string) (*models.DocumentHandle, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	handle := m.Handle
	return &handle, nil
}

func (m *MockDocuments) AppendText(ctx context.Context, handle *models.DocumentHandle, text string) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, text)
	return nil
}

func (m *MockDocuments) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
