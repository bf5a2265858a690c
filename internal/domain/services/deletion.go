package services

import (
	"context"

	"docvault/internal/domain/models"
)

// DeletionService mediates deletion for actors lacking direct delete
// rights: they file a request to the document's owner, who (or an admin)
// later approves or rejects it.
type DeletionService interface {
	// Request files a deletion request addressed to the document's owner
	Request(ctx context.Context, p models.Principal, documentID string) (*models.DeletionRequest, error)

	// Approve executes the normal delete path and closes the request.
	// Only the addressed owner or an admin may decide.
	Approve(ctx context.Context, p models.Principal, requestID string, notes *string) error

	// Reject closes the request without deleting, with optional notes
	Reject(ctx context.Context, p models.Principal, requestID string, notes *string) error

	// ListForOwner returns pending requests addressed to the caller
	ListForOwner(ctx context.Context, p models.Principal) ([]models.DeletionRequest, error)
}
