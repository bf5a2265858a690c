package services

import (
	"context"

	"docvault/internal/domain/models"
)

// LinkService handles the additive document↔folder associations beyond
// the primary folder.
type LinkService interface {
	// SetFolders replaces the additional-link set of a document and
	// returns the effective folder set (primary included). Every folder
	// id must exist, root excepted, or the whole call fails.
	SetFolders(ctx context.Context, p models.Principal, documentID string, folderIDs []string) ([]string, error)

	// RemoveLink removes one additional association. Removing the primary
	// folder is refused; callers must move the document instead.
	RemoveLink(ctx context.Context, p models.Principal, documentID, folderID string) error

	// FoldersFor returns {primary} ∪ links, deduplicated.
	FoldersFor(ctx context.Context, p models.Principal, documentID string) ([]string, error)
}
