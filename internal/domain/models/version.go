package models

import (
	"time"
)

// VersionRecord is a superseded snapshot of a document. The current
// version is the live Document row; records exist only for archived
// versions. Version numbers are strictly increasing per document and are
// never reused.
type VersionRecord struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	Version      int       `json:"version" db:"version"`
	OriginalName string    `json:"original_name" db:"original_name"`
	StoragePath  string    `json:"storage_path" db:"storage_path"`
	ArchivedAt   time.Time `json:"archived_at" db:"archived_at"`
	ArchivedBy   string    `json:"archived_by" db:"archived_by"`
}

// VersionEntry is a presentation row of a document's version history,
// covering both the live version and archived snapshots.
type VersionEntry struct {
	Version      int       `json:"version"`
	Label        string    `json:"label"` // "Versão N (dd.mm.yyyy)"
	OriginalName string    `json:"original_name"`
	Current      bool      `json:"current"`
	ArchivedAt   time.Time `json:"archived_at,omitempty"`
	ArchivedBy   string    `json:"archived_by,omitempty"`
}
