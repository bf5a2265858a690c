package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/notify"
	"docvault/internal/realtime"
	"docvault/internal/storage"
)

type reviewService struct {
	subRepo     repositories.SubmissionRepository
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	store       *storage.Store
	archiver    *Archiver
	validator   *ResourceValidator
	gate        *auth.Gate
	bus         *realtime.Bus
	notifier    notify.Notifier
	logger      *slog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	subRepo repositories.SubmissionRepository,
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	store *storage.Store,
	archiver *Archiver,
	validator *ResourceValidator,
	gate *auth.Gate,
	bus *realtime.Bus,
	notifier notify.Notifier,
	logger *slog.Logger,
) services.ReviewService {
	return &reviewService{
		subRepo:     subRepo,
		docRepo:     docRepo,
		versionRepo: versionRepo,
		store:       store,
		archiver:    archiver,
		validator:   validator,
		gate:        gate,
		bus:         bus,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit stages a candidate file for review. The file goes into the
// staging area, never the main tree, so nothing is visible until an
// approver decides.
func (s *reviewService) Submit(ctx context.Context, p models.Principal, req *services.SubmitRequest) (*models.Submission, error) {
	if err := s.gate.Require(p, auth.ActionSubmit); err != nil {
		return nil, err
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ChangeNotes = strings.TrimSpace(req.ChangeNotes)
	if req.TargetFolderID == "" {
		req.TargetFolderID = models.RootFolderID
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.FileName, fileNameRule...),
		validation.Field(&req.ChangeNotes,
			validation.Required.Error("change notes are required"),
			validation.Length(config.MinChangeNotesLength, 0).Error("change notes are too short"),
		),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if req.Content == nil {
		return nil, &domain.ValidationError{Message: "upload content is required"}
	}

	if err := s.validator.ValidateFolder(ctx, req.TargetFolderID); err != nil {
		return nil, err
	}

	if req.ReplacesDocumentID != nil {
		if _, err := s.docRepo.GetByID(ctx, *req.ReplacesDocumentID); err != nil {
			return nil, err
		}
	}

	sub := &models.Submission{
		ID:                 uuid.NewString(),
		TargetFolderID:     req.TargetFolderID,
		ReplacesDocumentID: req.ReplacesDocumentID,
		OriginalName:       req.FileName,
		UploadedBy:         p.Email,
		UploadedAt:         time.Now(),
		Status:             models.SubmissionPending,
		ChangeNotes:        req.ChangeNotes,
	}

	rel, _, err := s.store.WriteStaging(sub.ID, storage.SanitizeName(req.FileName), req.Content)
	if err != nil {
		return nil, err
	}
	sub.StoragePath = rel

	if err := s.subRepo.Create(ctx, sub); err != nil {
		_ = s.store.Remove(rel)
		return nil, err
	}

	s.logger.Info("submission staged",
		"id", sub.ID,
		"name", sub.OriginalName,
		"target_folder_id", sub.TargetFolderID,
		"uploaded_by", p.Email,
	)

	return sub, nil
}

// Approve merges a pending submission into the document store. The
// terminal-state transition is claimed first so two concurrent approvers
// cannot both merge; the loser gets a conflict before any file moves.
func (s *reviewService) Approve(ctx context.Context, p models.Principal, submissionID string, req *services.ApproveRequest) (*models.Document, error) {
	if err := s.gate.Require(p, auth.ActionApprove); err != nil {
		return nil, err
	}

	sub, err := s.subRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("submission was already %s", sub.Status),
			ResourceType: "submission",
			ResourceID:   sub.ID,
		}
	}

	target, err := s.resolveReplaceTarget(ctx, sub, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	decided := *sub
	decided.Status = models.SubmissionApproved
	decided.ReviewedBy = &p.Email
	decided.ReviewedAt = &now
	if req != nil && req.Notes != nil {
		decided.ReviewNotes = req.Notes
	}
	if err := s.subRepo.MarkDecided(ctx, &decided); err != nil {
		return nil, err
	}

	doc, err := s.merge(ctx, p, &decided, target, now)
	if err != nil {
		// Give the decision back so the approver can retry once the
		// storage problem is resolved; a stuck approved row with no
		// merged document would be unrecoverable.
		if reopenErr := s.subRepo.Reopen(ctx, sub.ID); reopenErr != nil {
			s.logger.Error("failed to reopen submission after merge failure",
				"id", sub.ID,
				"error", reopenErr,
			)
		}
		return nil, err
	}

	s.logger.Info("submission approved",
		"id", sub.ID,
		"document_id", doc.ID,
		"version", doc.CurrentVersion,
		"approved_by", p.Email,
	)

	s.bus.Publish(realtime.DocumentEvent(realtime.EventDocumentUpload, doc.ID, doc.PrimaryFolderID))

	s.notifier.Notify(sub.UploadedBy,
		fmt.Sprintf("Submission approved: %s", sub.OriginalName),
		fmt.Sprintf("Your submission %q was approved by %s.", sub.OriginalName, p.Email),
	)

	return doc, nil
}

// Reject marks a pending submission rejected. Notes are mandatory so the
// submitter always learns why.
func (s *reviewService) Reject(ctx context.Context, p models.Principal, submissionID, notes string) (*models.Submission, error) {
	if err := s.gate.Require(p, auth.ActionApprove); err != nil {
		return nil, err
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, &domain.ValidationError{Message: "rejection notes are required"}
	}

	sub, err := s.subRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("submission was already %s", sub.Status),
			ResourceType: "submission",
			ResourceID:   sub.ID,
		}
	}

	now := time.Now()
	sub.Status = models.SubmissionRejected
	sub.ReviewNotes = &notes
	sub.ReviewedBy = &p.Email
	sub.ReviewedAt = &now
	if err := s.subRepo.MarkDecided(ctx, sub); err != nil {
		return nil, err
	}

	// The staged file has no further use; failure to remove only leaks
	// disk space.
	if err := s.store.Remove(sub.StoragePath); err != nil {
		s.logger.Warn("failed to remove rejected staging file", "submission_id", sub.ID, "error", err)
	}

	s.logger.Info("submission rejected", "id", sub.ID, "rejected_by", p.Email)

	s.notifier.Notify(sub.UploadedBy,
		fmt.Sprintf("Submission rejected: %s", sub.OriginalName),
		fmt.Sprintf("Your submission %q was rejected by %s.\n\nReason: %s", sub.OriginalName, p.Email, notes),
	)

	return sub, nil
}

// ListPending returns pending submissions, oldest first
func (s *reviewService) ListPending(ctx context.Context, p models.Principal) ([]models.Submission, error) {
	if err := s.gate.Require(p, auth.ActionApprove); err != nil {
		return nil, err
	}
	return s.subRepo.ListPending(ctx)
}

// ListMine returns the caller's own submissions, any role
func (s *reviewService) ListMine(ctx context.Context, p models.Principal) ([]models.Submission, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.subRepo.ListByUploader(ctx, p.Email)
}

// PendingCount counts pending submissions for the review badge
func (s *reviewService) PendingCount(ctx context.Context, p models.Principal) (int, error) {
	if err := s.gate.Require(p, auth.ActionApprove); err != nil {
		return 0, err
	}
	return s.subRepo.CountPending(ctx)
}

// resolveReplaceTarget decides which document the submission supersedes:
// an explicit approver override wins, then the submission's recorded
// target, then a fuzzy name match within the target folder. Nil means a
// new document is created.
func (s *reviewService) resolveReplaceTarget(ctx context.Context, sub *models.Submission, req *services.ApproveRequest) (*models.Document, error) {
	if req != nil && req.ReplaceDocumentID != nil {
		return s.docRepo.GetByID(ctx, *req.ReplaceDocumentID)
	}

	if sub.ReplacesDocumentID != nil {
		doc, err := s.docRepo.GetByID(ctx, *sub.ReplacesDocumentID)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// Recorded target deleted since submission; fall through to matching.
	}

	candidates, err := s.docRepo.ListByPrimaryFolder(ctx, sub.TargetFolderID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if SeriesMatch(candidates[i].OriginalName, sub.OriginalName) {
			return &candidates[i], nil
		}
	}

	return nil, nil
}

// merge promotes the staged file into permanent storage, replacing the
// target document in place or creating a new one. Authorship is credited
// to the submitter, not the approver.
func (s *reviewService) merge(ctx context.Context, p models.Principal, sub *models.Submission, target *models.Document, now time.Time) (*models.Document, error) {
	fileName := storage.SanitizeName(sub.OriginalName)
	base := storage.BaseName(sub.OriginalName)
	seriesKey := storage.SeriesKey(sub.OriginalName)

	// The scan-then-promote below runs in the submission's base
	// directory, while archiving touches the target's. Both series must
	// be held so a concurrent direct upload under either name cannot
	// compute the same version number. Sorted order keeps two approvers
	// from deadlocking on the pair.
	lockKeys := []string{seriesKey}
	if target != nil && target.SeriesKey != seriesKey {
		lockKeys = append(lockKeys, target.SeriesKey)
		sort.Strings(lockKeys)
	}
	for _, key := range lockKeys {
		defer s.store.LockSeries(key)()
	}

	mimeType := mime.TypeByExtension(path.Ext(fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if target != nil {
		version, err := s.store.NextVersionNumber(base)
		if err != nil {
			return nil, err
		}
		rel, size, err := s.store.PromoteStaging(sub.StoragePath, base, fileName, version, now)
		if err != nil {
			return nil, err
		}

		if err := s.archiver.Archive(ctx, target, sub.UploadedBy, now); err != nil {
			return nil, err
		}

		// The series key is kept as-is so future exact-name uploads of
		// the original series still find this document.
		target.OriginalName = sub.OriginalName
		target.StoragePath = rel
		target.Size = size
		target.MimeType = mimeType
		target.PrimaryFolderID = sub.TargetFolderID
		target.CurrentVersion++
		target.UploadedAt = now
		target.Owner = sub.UploadedBy
		target.UpdatedAt = now
		target.UpdatedBy = sub.UploadedBy

		if err := s.docRepo.Update(ctx, target); err != nil {
			return nil, err
		}
		return target, nil
	}

	version, err := s.store.NextVersionNumber(base)
	if err != nil {
		return nil, err
	}
	rel, size, err := s.store.PromoteStaging(sub.StoragePath, base, fileName, version, now)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		OriginalName:    sub.OriginalName,
		SeriesKey:       seriesKey,
		StoragePath:     rel,
		Size:            size,
		MimeType:        mimeType,
		PrimaryFolderID: sub.TargetFolderID,
		CurrentVersion:  1,
		UploadedAt:      now,
		Owner:           sub.UploadedBy,
		CreatedBy:       sub.UploadedBy,
		UpdatedAt:       now,
		UpdatedBy:       sub.UploadedBy,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		_ = s.store.Remove(rel)
		return nil, err
	}

	return doc, nil
}
