package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// FolderRepository persists the folder forest. The root folder is a
// sentinel and is never stored; ParentID == models.RootFolderID marks
// top-level folders.
type FolderRepository interface {
	// Create inserts a new folder row
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by id
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update writes name/parent/color/description changes
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes the folder row
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders of parentID
	// (models.RootFolderID for the top level), ordered by name
	ListChildren(ctx context.Context, parentID string) ([]models.Folder, error)

	// GetAll returns every folder, used for tree building
	GetAll(ctx context.Context) ([]models.Folder, error)
}
