package services

import (
	"context"

	"docvault/internal/domain/models"
)

// FolderService handles folder-tree business logic.
type FolderService interface {
	// Create creates a new folder under a parent
	Create(ctx context.Context, p models.Principal, req *CreateFolderRequest) (*models.Folder, error)

	// Get retrieves a folder
	Get(ctx context.Context, p models.Principal, id string) (*models.Folder, error)

	// Update renames a folder or changes its color/description
	Update(ctx context.Context, p models.Principal, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// Move reparents a folder, refusing cycles
	Move(ctx context.Context, p models.Principal, id, newParentID string) (*models.Folder, error)

	// Delete removes an empty folder, reassigning its documents to root
	Delete(ctx context.Context, p models.Principal, id string) error

	// Duplicate deep-clones a folder subtree under a target parent
	Duplicate(ctx context.Context, p models.Principal, id, targetParentID string) (*models.Folder, error)

	// AncestorPath returns the ordered root→folder path
	AncestorPath(ctx context.Context, p models.Principal, id string) ([]models.PathEntry, error)

	// Tree returns the full nested folder/document tree
	Tree(ctx context.Context, p models.Principal) (*Tree, error)

	// Contents lists a folder's child folders plus the documents homed or
	// linked there, without duplication
	Contents(ctx context.Context, p models.Principal, folderID string) (*FolderContents, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name        string  `json:"name"`
	ParentID    string  `json:"parent_id"` // models.RootFolderID for top level
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateFolderRequest represents a folder update request; nil fields are
// left unchanged.
type UpdateFolderRequest struct {
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FolderContents represents a folder with its children
type FolderContents struct {
	Folder    *models.Folder    `json:"folder,omitempty"` // nil for root
	Folders   []models.Folder   `json:"folders"`
	Documents []models.Document `json:"documents"`
}

// FolderTreeNode is one folder of the nested tree
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  string            `json:"parent_id"`
	Color     *string           `json:"color,omitempty"`
	Folders   []*FolderTreeNode `json:"folders"`
	Documents []models.Document `json:"documents"`
}

// Tree is the full nested folder/document tree from the root down
type Tree struct {
	Folders   []*FolderTreeNode `json:"folders"`
	Documents []models.Document `json:"documents"`
}
