package service

import (
	"context"
	"log/slog"
	"sort"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

type linkService struct {
	linkRepo  repositories.LinkRepository
	docRepo   repositories.DocumentRepository
	txManager repositories.TransactionManager
	validator *ResourceValidator
	gate      *auth.Gate
	logger    *slog.Logger
}

// NewLinkService creates a new link service
func NewLinkService(
	linkRepo repositories.LinkRepository,
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	gate *auth.Gate,
	logger *slog.Logger,
) services.LinkService {
	return &linkService{
		linkRepo:  linkRepo,
		docRepo:   docRepo,
		txManager: txManager,
		validator: validator,
		gate:      gate,
		logger:    logger,
	}
}

// SetFolders replaces a document's additional-link set. Links are
// additive references; the primary folder stays part of the effective set
// without a link row, and linking it explicitly is a silent no-op.
func (s *linkService) SetFolders(ctx context.Context, p models.Principal, documentID string, folderIDs []string) ([]string, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Validate the whole set before writing anything.
	deduped := make([]string, 0, len(folderIDs))
	seen := map[string]bool{doc.PrimaryFolderID: true}
	for _, folderID := range folderIDs {
		if seen[folderID] {
			continue
		}
		if err := s.validator.ValidateFolder(ctx, folderID); err != nil {
			return nil, err
		}
		seen[folderID] = true
		deduped = append(deduped, folderID)
	}

	// Clear and re-insert as one transaction so a failed insert cannot
	// leave the document with no links at all.
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.linkRepo.ReplaceForDocument(ctx, documentID, deduped)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document links replaced",
		"document_id", documentID,
		"folders", len(deduped),
		"updated_by", p.Email,
	)

	return s.effectiveSet(doc, deduped), nil
}

// RemoveLink removes one additional association. The primary folder is
// not a link and cannot be removed here.
func (s *linkService) RemoveLink(ctx context.Context, p models.Principal, documentID, folderID string) error {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if folderID == doc.PrimaryFolderID {
		return &domain.ConflictError{
			Message:      "the primary folder is not a link; move the document instead",
			ResourceType: "document",
			ResourceID:   documentID,
		}
	}

	return s.linkRepo.Delete(ctx, documentID, folderID)
}

// FoldersFor returns every folder a document appears in.
func (s *linkService) FoldersFor(ctx context.Context, p models.Principal, documentID string) ([]string, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	linked, err := s.linkRepo.ListFoldersForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return s.effectiveSet(doc, linked), nil
}

func (s *linkService) effectiveSet(doc *models.Document, linked []string) []string {
	set := make([]string, 0, len(linked)+1)
	set = append(set, doc.PrimaryFolderID)
	seen := map[string]bool{doc.PrimaryFolderID: true}
	for _, folderID := range linked {
		if !seen[folderID] {
			seen[folderID] = true
			set = append(set, folderID)
		}
	}
	sort.Strings(set[1:])
	return set
}
