// Google Docs implementation of [Documents]
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleDocsService implements [Documents] using the Docs and Drive APIs.
//
// One document is created per run; appends always target the position just
// before the document's trailing implicit newline.
type GoogleDocsService struct {
	docs     *docs.Service
	drive    *drive.Service
	folderID string
	logger   *log.Logger
}

// NewGoogleDocsService builds Docs and Drive clients from the provided token source.
//
// folderID is optional; when set, created documents are filed under that
// Drive folder. Extra client options are applied after the token source so
// tests can redirect the endpoint.
func NewGoogleDocsService(ctx context.Context, ts oauth2.TokenSource, folderID string, logger *log.Logger, opts ...option.ClientOption) (*GoogleDocsService, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)

	docsService, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: build docs client: %v", shared.ErrDocument, err)
	}

	driveService, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: build drive client: %v", shared.ErrDocument, err)
	}

	return &GoogleDocsService{
		docs:     docsService,
		drive:    driveService,
		folderID: folderID,
		logger:   logger,
	}, nil
}

func (s *GoogleDocsService) Name() string {
	return "Google Docs"
}

// DocumentURL builds the viewable URL for a document ID.
func DocumentURL(docID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", docID)
}

// CreateDocument creates a new document and returns its handle.
func (s *GoogleDocsService) CreateDocument(ctx context.Context, title string) (*models.DocumentHandle, error) {
	doc, err := s.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, wrapDocsError("create document", err)
	}

	handle := &models.DocumentHandle{
		ID:  doc.DocumentId,
		URL: DocumentURL(doc.DocumentId),
	}

	if s.folderID != "" {
		_, err := s.drive.Files.Update(handle.ID, nil).AddParents(s.folderID).Context(ctx).Do()
		if err != nil {
			return nil, wrapDocsError("file document in folder", err)
		}
		s.logger.Debug("filed document", "doc_id", handle.ID, "folder_id", s.folderID)
	}

	s.logger.Info("created document", "doc_id", handle.ID, "title", title)
	return handle, nil
}

// AppendText fetches the document, computes the append index, and issues a
// single batched insert.
//
// The insertion index is one before the last content block's end, the Docs
// convention for appending without disturbing the trailing implicit newline.
// Fetch-then-insert is not transactional: a concurrent writer could stale
// the index between the two calls. Sequential single-document use within a
// run avoids that by construction; any concurrent or retried use must
// re-fetch before each insert.
func (s *GoogleDocsService) AppendText(ctx context.Context, handle *models.DocumentHandle, text string) error {
	doc, err := s.docs.Documents.Get(handle.ID).Context(ctx).Do()
	if err != nil {
		return wrapDocsError("fetch document", err)
	}

	content := doc.Body.Content
	if len(content) == 0 {
		return fmt.Errorf("%w: document %s has no content blocks", shared.ErrDocument, handle.ID)
	}
	endIndex := content[len(content)-1].EndIndex

	update := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: endIndex - 1},
				Text:     text,
			},
		}},
	}

	if _, err := s.docs.Documents.BatchUpdate(handle.ID, update).Context(ctx).Do(); err != nil {
		return wrapDocsError("append text", err)
	}

	s.logger.Info("appended text", "doc_id", handle.ID, "length", len(text))
	return nil
}

// wrapDocsError wraps a provider failure, surfacing the HTTP status when available.
func wrapDocsError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrDocument, op, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrDocument, op, err)
}
