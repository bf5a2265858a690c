package services

import (
	"context"
	"io"

	"docvault/internal/domain/models"
)

// DocumentService handles the versioned document store.
type DocumentService interface {
	// Ingest stores an uploaded file. When a document with the same
	// series key already exists, its current version is archived and the
	// same document id is updated in place; otherwise a new document is
	// created at version 1.
	Ingest(ctx context.Context, p models.Principal, req *IngestRequest) (*models.Document, error)

	// Get retrieves document metadata
	Get(ctx context.Context, p models.Principal, id string) (*models.Document, error)

	// Move changes only the primary folder; storage is untouched
	Move(ctx context.Context, p models.Principal, id, newFolderID string) (*models.Document, error)

	// Delete irreversibly removes a document, its archived versions and
	// its folder links. Restricted to admins or approvers who own/created
	// the document.
	Delete(ctx context.Context, p models.Principal, id string) error

	// Purge is the deletion-request execution path: it runs the same
	// removal as Delete but skips the role gate. Callers must have
	// authorized via the deletion-mediation flow.
	Purge(ctx context.Context, id, actorEmail string) error

	// ListVersions returns current + archived entries, version descending
	ListVersions(ctx context.Context, p models.Principal, id string) ([]models.VersionEntry, error)

	// FetchVersion opens a document's content. Version 0 means current;
	// explicit historical versions are restricted to admins/approvers.
	FetchVersion(ctx context.Context, p models.Principal, id string, version int) (*VersionContent, error)

	// Preview returns the rendered PDF preview of the current version,
	// or a conversion error when the rendering service is unavailable.
	Preview(ctx context.Context, p models.Principal, id string) ([]byte, error)
}

// IngestRequest represents a direct upload
type IngestRequest struct {
	FileName       string
	MimeType       string
	Size           int64
	Content        io.Reader
	TargetFolderID string
}

// VersionContent is an opened document version
type VersionContent struct {
	Content  io.ReadCloser
	FileName string
	MimeType string
	Version  int
}
