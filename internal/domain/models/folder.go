package models

import (
	"time"
)

// RootFolderID is the sentinel id of the implicit root of the folder tree.
// The root always exists, is never stored as a row, and can never be
// renamed, moved or deleted.
const RootFolderID = "root"

type Folder struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ParentID    string    `json:"parent_id" db:"parent_id"` // RootFolderID for top-level folders
	Color       *string   `json:"color,omitempty" db:"color"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy   string    `json:"updated_by" db:"updated_by"`
}

// PathEntry is one step of a root→folder ancestor path, used by
// breadcrumb-style consumers.
type PathEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
