package models

import (
	"time"
)

// Document is the live, current version of a stored file. Superseded
// versions live in VersionRecord rows; the document id is stable across
// replacements.
type Document struct {
	ID              string    `json:"id" db:"id"`
	OriginalName    string    `json:"original_name" db:"original_name"`
	SeriesKey       string    `json:"-" db:"series_key"`
	StoragePath     string    `json:"storage_path" db:"storage_path"` // relative to the uploads root
	Size            int64     `json:"size" db:"size"`
	MimeType        string    `json:"mime_type" db:"mime_type"`
	PrimaryFolderID string    `json:"primary_folder_id" db:"primary_folder_id"`
	CurrentVersion  int       `json:"current_version" db:"current_version"`
	UploadedAt      time.Time `json:"uploaded_at" db:"uploaded_at"`
	Owner           string    `json:"owner" db:"owner_email"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy       string    `json:"updated_by" db:"updated_by"`
}

// DocumentFolderLink is an additive many-to-many association between a
// document and a folder. The primary folder is implicitly part of the link
// set even when no row exists for it.
type DocumentFolderLink struct {
	DocumentID string `json:"document_id" db:"document_id"`
	FolderID   string `json:"folder_id" db:"folder_id"`
}
