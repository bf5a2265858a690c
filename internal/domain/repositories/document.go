package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// DocumentRepository persists document metadata. Physical file contents
// live under the uploads root and are managed by the storage layer.
type DocumentRepository interface {
	// Create inserts a new document row
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by id
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// GetBySeriesKey returns the document with the given series key, or a
	// not-found error when no upload of that series exists yet
	GetBySeriesKey(ctx context.Context, key string) (*models.Document, error)

	// Update writes metadata changes (replace-in-place keeps the same id)
	Update(ctx context.Context, doc *models.Document) error

	// Delete removes the document row
	Delete(ctx context.Context, id string) error

	// ListByPrimaryFolder lists documents whose primary folder is folderID
	ListByPrimaryFolder(ctx context.Context, folderID string) ([]models.Document, error)

	// ReassignPrimaryFolder moves every document homed in fromFolderID to
	// toFolderID in one statement; used when a folder is deleted
	ReassignPrimaryFolder(ctx context.Context, fromFolderID, toFolderID, updatedBy string) error

	// GetAll returns every document's metadata, used for tree building
	GetAll(ctx context.Context) ([]models.Document, error)
}
