package service

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/preview"
	"docvault/internal/realtime"
	"docvault/internal/storage"
)

type documentService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	linkRepo    repositories.LinkRepository
	store       *storage.Store
	archiver    *Archiver
	previews    *preview.Cache
	txManager   repositories.TransactionManager
	validator   *ResourceValidator
	gate        *auth.Gate
	bus         *realtime.Bus
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	linkRepo repositories.LinkRepository,
	store *storage.Store,
	archiver *Archiver,
	previews *preview.Cache,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	gate *auth.Gate,
	bus *realtime.Bus,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		linkRepo:    linkRepo,
		store:       store,
		archiver:    archiver,
		previews:    previews,
		txManager:   txManager,
		validator:   validator,
		gate:        gate,
		bus:         bus,
		logger:      logger,
	}
}

var fileNameRule = []validation.Rule{
	validation.Required,
	validation.Length(1, config.MaxFileNameLength),
	validation.Match(regexp.MustCompile(`^[^/\\]+$`)).Error("file name cannot contain path separators"),
}

// Ingest stores an upload. Same-series uploads archive the current live
// file and update the existing document row in place, so the id every
// link and bookmark points at survives the replacement.
func (s *documentService) Ingest(ctx context.Context, p models.Principal, req *services.IngestRequest) (*models.Document, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	req.FileName = strings.TrimSpace(req.FileName)
	if req.TargetFolderID == "" {
		req.TargetFolderID = models.RootFolderID
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.FileName, fileNameRule...),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if req.Content == nil {
		return nil, &domain.ValidationError{Message: "upload content is required"}
	}

	if err := s.validator.ValidateFolder(ctx, req.TargetFolderID); err != nil {
		return nil, err
	}

	fileName := storage.SanitizeName(req.FileName)
	base := storage.BaseName(req.FileName)
	if base == "" {
		return nil, &domain.ValidationError{Message: "file name has no usable characters"}
	}
	seriesKey := storage.SeriesKey(req.FileName)
	now := time.Now()

	unlock := s.store.LockSeries(seriesKey)
	defer unlock()

	existing, err := s.docRepo.GetBySeriesKey(ctx, seriesKey)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	version, err := s.store.NextVersionNumber(base)
	if err != nil {
		return nil, err
	}

	rel, size, err := s.store.WriteDocument(base, fileName, version, now, req.Content)
	if err != nil {
		return nil, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(path.Ext(fileName))
	}

	var doc *models.Document
	if existing != nil {
		if err := s.archiver.Archive(ctx, existing, p.Email, now); err != nil {
			_ = s.store.Remove(rel)
			return nil, err
		}

		existing.OriginalName = req.FileName
		existing.StoragePath = rel
		existing.Size = size
		existing.MimeType = mimeType
		existing.PrimaryFolderID = req.TargetFolderID
		existing.CurrentVersion++
		existing.UploadedAt = now
		existing.Owner = p.Email
		existing.UpdatedAt = now
		existing.UpdatedBy = p.Email

		if err := s.docRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		doc = existing
	} else {
		doc = &models.Document{
			OriginalName:    req.FileName,
			SeriesKey:       seriesKey,
			StoragePath:     rel,
			Size:            size,
			MimeType:        mimeType,
			PrimaryFolderID: req.TargetFolderID,
			CurrentVersion:  1,
			UploadedAt:      now,
			Owner:           p.Email,
			CreatedBy:       p.Email,
			UpdatedAt:       now,
			UpdatedBy:       p.Email,
		}
		if err := s.docRepo.Create(ctx, doc); err != nil {
			_ = s.store.Remove(rel)
			return nil, err
		}
	}

	s.logger.Info("document ingested",
		"id", doc.ID,
		"name", doc.OriginalName,
		"version", doc.CurrentVersion,
		"folder_id", doc.PrimaryFolderID,
		"uploaded_by", p.Email,
	)

	s.bus.Publish(realtime.DocumentEvent(realtime.EventDocumentUpload, doc.ID, doc.PrimaryFolderID))

	return doc, nil
}

// Get retrieves document metadata
func (s *documentService) Get(ctx context.Context, p models.Principal, id string) (*models.Document, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.docRepo.GetByID(ctx, id)
}

// Move changes a document's primary folder. Storage paths never encode
// folder identity, so no file moves.
func (s *documentService) Move(ctx context.Context, p models.Principal, id, newFolderID string) (*models.Document, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	if newFolderID == "" {
		newFolderID = models.RootFolderID
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateFolder(ctx, newFolderID); err != nil {
		return nil, err
	}

	doc.PrimaryFolderID = newFolderID
	doc.UpdatedAt = time.Now()
	doc.UpdatedBy = p.Email

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document moved", "id", id, "folder_id", newFolderID, "moved_by", p.Email)

	return doc, nil
}

// Delete irreversibly removes a document. Non-owners must go through a
// deletion request instead.
func (s *documentService) Delete(ctx context.Context, p models.Principal, id string) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gate.RequireDocumentDelete(p, doc); err != nil {
		return err
	}

	return s.remove(ctx, doc, p.Email)
}

// Purge runs the ungated removal path on behalf of an approved deletion
// request.
func (s *documentService) Purge(ctx context.Context, id, actorEmail string) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, doc, actorEmail)
}

func (s *documentService) remove(ctx context.Context, doc *models.Document, actorEmail string) error {
	records, err := s.versionRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.linkRepo.DeleteByDocument(txCtx, doc.ID); err != nil {
			return err
		}
		if err := s.versionRepo.DeleteByDocument(txCtx, doc.ID); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, doc.ID)
	})
	if err != nil {
		return err
	}

	// Row deletion committed; file removal failures leave orphans on disk
	// but never a dangling row, which matters more.
	if err := s.store.Remove(doc.StoragePath); err != nil {
		s.logger.Warn("failed to remove live file", "document_id", doc.ID, "error", err)
	}
	for _, rec := range records {
		if err := s.store.Remove(rec.StoragePath); err != nil {
			s.logger.Warn("failed to remove archived file", "document_id", doc.ID, "version", rec.Version, "error", err)
		}
	}

	s.logger.Info("document deleted",
		"id", doc.ID,
		"name", doc.OriginalName,
		"versions_removed", len(records)+1,
		"deleted_by", actorEmail,
	)

	s.bus.Publish(realtime.DocumentEvent(realtime.EventDocumentDeleted, doc.ID, doc.PrimaryFolderID))

	return nil
}

// ListVersions returns the full history of a document, current entry
// first, then archived snapshots version descending.
func (s *documentService) ListVersions(ctx context.Context, p models.Principal, id string) ([]models.VersionEntry, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.versionRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]models.VersionEntry, 0, len(records)+1)
	entries = append(entries, models.VersionEntry{
		Version:      doc.CurrentVersion,
		Label:        storage.VersionLabel(doc.CurrentVersion, doc.UpdatedAt),
		OriginalName: doc.OriginalName,
		Current:      true,
	})
	for _, rec := range records {
		entries = append(entries, models.VersionEntry{
			Version:      rec.Version,
			Label:        storage.VersionLabel(rec.Version, rec.ArchivedAt),
			OriginalName: rec.OriginalName,
			ArchivedAt:   rec.ArchivedAt,
			ArchivedBy:   rec.ArchivedBy,
		})
	}

	return entries, nil
}

// FetchVersion opens a document version's content. Version 0 (or the
// current number) serves the live file; archived versions require history
// access.
func (s *documentService) FetchVersion(ctx context.Context, p models.Principal, id string, version int) (*services.VersionContent, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if version == 0 || version == doc.CurrentVersion {
		content, err := s.store.Open(doc.StoragePath)
		if err != nil {
			return nil, err
		}
		return &services.VersionContent{
			Content:  content,
			FileName: doc.OriginalName,
			MimeType: doc.MimeType,
			Version:  doc.CurrentVersion,
		}, nil
	}

	if err := s.gate.RequireHistoryAccess(p); err != nil {
		return nil, err
	}

	rec, err := s.versionRepo.GetByDocumentAndVersion(ctx, id, version)
	if err != nil {
		return nil, err
	}

	content, err := s.store.Open(rec.StoragePath)
	if err != nil {
		return nil, err
	}

	mimeType := mime.TypeByExtension(path.Ext(rec.OriginalName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &services.VersionContent{
		Content:  content,
		FileName: rec.OriginalName,
		MimeType: mimeType,
		Version:  rec.Version,
	}, nil
}

// Preview returns the rendered PDF preview of the current version.
func (s *documentService) Preview(ctx context.Context, p models.Principal, id string) ([]byte, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.previews.Get(ctx, doc, doc.CurrentVersion, doc.StoragePath)
}
