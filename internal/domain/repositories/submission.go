package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// SubmissionRepository persists review submissions.
type SubmissionRepository interface {
	// Create inserts a pending submission
	Create(ctx context.Context, sub *models.Submission) error

	// GetByID retrieves a submission by id
	GetByID(ctx context.Context, id string) (*models.Submission, error)

	// MarkDecided transitions a pending submission to a terminal state.
	// Returns a conflict error when the submission was already decided.
	MarkDecided(ctx context.Context, sub *models.Submission) error

	// Reopen reverts an approved submission to pending, clearing the
	// review fields. Used to give the decision back when the merge that
	// followed the approval could not complete.
	Reopen(ctx context.Context, id string) error

	// ListPending returns pending submissions, oldest first
	ListPending(ctx context.Context) ([]models.Submission, error)

	// ListByUploader returns every submission filed by the given email
	ListByUploader(ctx context.Context, email string) ([]models.Submission, error)

	// CountPending counts pending submissions without scanning history
	CountPending(ctx context.Context) (int, error)
}
