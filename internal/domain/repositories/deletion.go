package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// DeletionRequestRepository persists deletion-mediation requests.
type DeletionRequestRepository interface {
	// Create inserts a pending deletion request
	Create(ctx context.Context, req *models.DeletionRequest) error

	// GetByID retrieves a request by id
	GetByID(ctx context.Context, id string) (*models.DeletionRequest, error)

	// MarkDecided transitions a pending request to a terminal state
	MarkDecided(ctx context.Context, req *models.DeletionRequest) error

	// ListPendingForOwner returns pending requests addressed to an owner
	ListPendingForOwner(ctx context.Context, ownerEmail string) ([]models.DeletionRequest, error)
}
