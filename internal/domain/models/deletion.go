package models

import (
	"time"
)

type DeletionRequestStatus string

const (
	DeletionPending  DeletionRequestStatus = "pending"
	DeletionApproved DeletionRequestStatus = "approved"
	DeletionRejected DeletionRequestStatus = "rejected"
)

// DeletionRequest mediates deletion for actors lacking direct delete
// rights: the requester files it, the document owner (or an admin) later
// approves or rejects it.
type DeletionRequest struct {
	ID            string                `json:"id" db:"id"`
	DocumentID    string                `json:"document_id" db:"document_id"`
	RequestedBy   string                `json:"requested_by" db:"requested_by"`
	OwnerEmail    string                `json:"owner_email" db:"owner_email"`
	RequestedAt   time.Time             `json:"requested_at" db:"requested_at"`
	Status        DeletionRequestStatus `json:"status" db:"status"`
	DecisionNotes *string               `json:"decision_notes,omitempty" db:"decision_notes"`
	DecidedAt     *time.Time            `json:"decided_at,omitempty" db:"decided_at"`
}
