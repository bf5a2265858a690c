package models

import (
	"time"
)

// SubmissionStatus is the review state of a submission. A submission is
// created pending and transitions exactly once to a terminal state.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Submission is a contributor-originated candidate document held in the
// staging area until an approver decides on it. Once decided it is never
// mutated again.
type Submission struct {
	ID                 string           `json:"id" db:"id"`
	TargetFolderID     string           `json:"target_folder_id" db:"target_folder_id"`
	ReplacesDocumentID *string          `json:"replaces_document_id,omitempty" db:"replaces_document_id"`
	OriginalName       string           `json:"original_name" db:"original_name"`
	StoragePath        string           `json:"-" db:"storage_path"` // staging-relative, never exposed
	UploadedBy         string           `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt         time.Time        `json:"uploaded_at" db:"uploaded_at"`
	Status             SubmissionStatus `json:"status" db:"status"`
	ChangeNotes        string           `json:"change_notes" db:"change_notes"`
	ReviewNotes        *string          `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedBy         *string          `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt         *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
}
