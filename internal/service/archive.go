package service

import (
	"context"
	"log/slog"
	"time"

	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/storage"
)

// Archiver moves a superseded live file into the per-document archive and
// records the snapshot. Version numbers are strictly increasing and never
// reused: callers hold the series lock around the read-max/write-max+1
// sequence, and the UNIQUE (document_id, version) constraint catches any
// race that slips through.
type Archiver struct {
	versions repositories.VersionRepository
	store    *storage.Store
	logger   *slog.Logger
}

// NewArchiver creates a new archiver
func NewArchiver(versions repositories.VersionRepository, store *storage.Store, logger *slog.Logger) *Archiver {
	return &Archiver{
		versions: versions,
		store:    store,
		logger:   logger,
	}
}

// Archive relocates the document's current file into
// versions/<documentId>/ and inserts the VersionRecord. The file move and
// the record insert are not one transaction; a crash in between leaves a
// relocated file without its archive row, which is an accepted risk of
// this layout.
func (a *Archiver) Archive(ctx context.Context, doc *models.Document, archivedBy string, at time.Time) error {
	archivedRel, err := a.store.MoveToArchive(doc.StoragePath, doc.ID)
	if err != nil {
		return err
	}

	record := &models.VersionRecord{
		DocumentID:   doc.ID,
		Version:      doc.CurrentVersion,
		OriginalName: doc.OriginalName,
		StoragePath:  archivedRel,
		ArchivedAt:   at,
		ArchivedBy:   archivedBy,
	}

	if err := a.versions.Create(ctx, record); err != nil {
		return err
	}

	a.logger.Info("version archived",
		"document_id", doc.ID,
		"version", doc.CurrentVersion,
		"archived_by", archivedBy,
	)

	return nil
}
