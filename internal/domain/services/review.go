package services

import (
	"context"
	"io"

	"docvault/internal/domain/models"
)

// ReviewService handles the submit/approve/reject workflow for restricted
// contributors. Submissions transition exactly once from pending to a
// terminal state and are immutable afterward.
type ReviewService interface {
	// Submit stages a candidate document for review. Restricted to the
	// reviewer role; change notes are mandatory.
	Submit(ctx context.Context, p models.Principal, req *SubmitRequest) (*models.Submission, error)

	// Approve merges a pending submission into the document store,
	// crediting authorship to the submitter, and notifies them.
	Approve(ctx context.Context, p models.Principal, submissionID string, req *ApproveRequest) (*models.Document, error)

	// Reject marks a pending submission rejected with mandatory notes and
	// notifies the submitter with the justification.
	Reject(ctx context.Context, p models.Principal, submissionID, notes string) (*models.Submission, error)

	// ListPending returns all pending submissions, oldest first
	ListPending(ctx context.Context, p models.Principal) ([]models.Submission, error)

	// ListMine returns the caller's own submissions, newest first
	ListMine(ctx context.Context, p models.Principal) ([]models.Submission, error)

	// PendingCount counts pending submissions without scanning history
	PendingCount(ctx context.Context, p models.Principal) (int, error)
}

// SubmitRequest represents a review submission; exactly one file per call.
type SubmitRequest struct {
	FileName           string
	Content            io.Reader
	Size               int64
	TargetFolderID     string
	ChangeNotes        string
	ReplacesDocumentID *string
}

// ApproveRequest carries the approver's optional overrides.
type ApproveRequest struct {
	// ReplaceDocumentID explicitly names the document to replace,
	// overriding both the submission's recorded target and fuzzy matching.
	ReplaceDocumentID *string `json:"replace_document_id,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}
