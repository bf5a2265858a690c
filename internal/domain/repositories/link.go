package repositories

import (
	"context"
)

// LinkRepository persists the additive document↔folder associations. The
// primary folder is never stored as a link row.
type LinkRepository interface {
	// ReplaceForDocument replaces the additional-link set of a document
	ReplaceForDocument(ctx context.Context, documentID string, folderIDs []string) error

	// ListFoldersForDocument returns the folder ids linked to a document
	ListFoldersForDocument(ctx context.Context, documentID string) ([]string, error)

	// ListDocumentsForFolder returns the document ids linked into a folder
	ListDocumentsForFolder(ctx context.Context, folderID string) ([]string, error)

	// Delete removes one link row
	Delete(ctx context.Context, documentID, folderID string) error

	// DeleteByDocument removes all links of a document
	DeleteByDocument(ctx context.Context, documentID string) error

	// DeleteByFolder removes all links referencing a folder
	DeleteByFolder(ctx context.Context, folderID string) error
}
