package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/notify"
)

type deletionService struct {
	reqRepo  repositories.DeletionRequestRepository
	docRepo  repositories.DocumentRepository
	docs     services.DocumentService
	gate     *auth.Gate
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewDeletionService creates a new deletion-mediation service
func NewDeletionService(
	reqRepo repositories.DeletionRequestRepository,
	docRepo repositories.DocumentRepository,
	docs services.DocumentService,
	gate *auth.Gate,
	notifier notify.Notifier,
	logger *slog.Logger,
) services.DeletionService {
	return &deletionService{
		reqRepo:  reqRepo,
		docRepo:  docRepo,
		docs:     docs,
		gate:     gate,
		notifier: notifier,
		logger:   logger,
	}
}

// Request files a deletion request addressed to the document's owner.
// Actors with direct delete rights do not need this path but may still
// use it.
func (s *deletionService) Request(ctx context.Context, p models.Principal, documentID string) (*models.DeletionRequest, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	req := &models.DeletionRequest{
		DocumentID:  doc.ID,
		RequestedBy: p.Email,
		OwnerEmail:  doc.Owner,
		RequestedAt: time.Now(),
		Status:      models.DeletionPending,
	}
	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("deletion requested",
		"id", req.ID,
		"document_id", doc.ID,
		"requested_by", p.Email,
		"owner", doc.Owner,
	)

	s.notifier.Notify(doc.Owner,
		fmt.Sprintf("Deletion requested: %s", doc.OriginalName),
		fmt.Sprintf("%s requested deletion of %q. Approve or reject the request in the review area.", p.Email, doc.OriginalName),
	)

	return req, nil
}

// Approve executes the removal and closes the request. The claim on the
// pending row happens before any destructive work so a concurrent
// decision loses cleanly.
func (s *deletionService) Approve(ctx context.Context, p models.Principal, requestID string, notes *string) error {
	req, err := s.decide(ctx, p, requestID, models.DeletionApproved, notes)
	if err != nil {
		return err
	}

	if err := s.docs.Purge(ctx, req.DocumentID, p.Email); err != nil {
		return err
	}

	s.notifier.Notify(req.RequestedBy,
		"Deletion request approved",
		fmt.Sprintf("Your deletion request was approved by %s.", p.Email),
	)

	return nil
}

// Reject closes the request without deleting anything
func (s *deletionService) Reject(ctx context.Context, p models.Principal, requestID string, notes *string) error {
	req, err := s.decide(ctx, p, requestID, models.DeletionRejected, notes)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your deletion request was rejected by %s.", p.Email)
	if notes != nil && strings.TrimSpace(*notes) != "" {
		body += "\n\nReason: " + *notes
	}
	s.notifier.Notify(req.RequestedBy, "Deletion request rejected", body)

	return nil
}

// ListForOwner returns pending requests addressed to the caller
func (s *deletionService) ListForOwner(ctx context.Context, p models.Principal) ([]models.DeletionRequest, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.reqRepo.ListPendingForOwner(ctx, p.Email)
}

func (s *deletionService) decide(ctx context.Context, p models.Principal, requestID string, status models.DeletionRequestStatus, notes *string) (*models.DeletionRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanDecideDeletion(p, req) {
		return nil, &domain.PermissionError{
			Message: "only the document owner or an admin may decide this request",
		}
	}

	if req.Status != models.DeletionPending {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("deletion request was already %s", req.Status),
			ResourceType: "deletion_request",
			ResourceID:   req.ID,
		}
	}

	now := time.Now()
	req.Status = status
	req.DecisionNotes = notes
	req.DecidedAt = &now
	if err := s.reqRepo.MarkDecided(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("deletion request decided",
		"id", req.ID,
		"document_id", req.DocumentID,
		"status", status,
		"decided_by", p.Email,
	)

	return req, nil
}
