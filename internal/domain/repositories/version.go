package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// VersionRepository persists archived version snapshots. A UNIQUE
// (document_id, version) constraint backs the never-reused guarantee.
type VersionRepository interface {
	// Create inserts an archive record
	Create(ctx context.Context, record *models.VersionRecord) error

	// ListByDocument returns archived records for a document, version descending
	ListByDocument(ctx context.Context, documentID string) ([]models.VersionRecord, error)

	// GetByDocumentAndVersion retrieves one archived snapshot
	GetByDocumentAndVersion(ctx context.Context, documentID string, version int) (*models.VersionRecord, error)

	// DeleteByDocument removes all archive rows of a document
	DeleteByDocument(ctx context.Context, documentID string) error
}
