package auth

import (
	"fmt"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

// Gate is the single authorization predicate every mutation goes through:
// "is at least X, or admin, or owns the resource". Role checks never
// re-derive this logic at call sites.
type Gate struct {
	registry *RoleRegistry
}

// NewGate creates a permission gate over the embedded role matrix.
func NewGate(registry *RoleRegistry) *Gate {
	return &Gate{registry: registry}
}

// Require fails with a permission error unless the principal's role
// grants the action.
func (g *Gate) Require(p models.Principal, action Action) error {
	role := g.effectiveRole(p)
	if g.registry.Can(role, action) {
		return nil
	}
	return &domain.PermissionError{
		Message: fmt.Sprintf("role %q may not perform %q", role, action),
	}
}

// RequireAtLeast fails unless the principal holds at least the given role.
func (g *Gate) RequireAtLeast(p models.Principal, min Role) error {
	if g.effectiveRole(p).AtLeast(min) {
		return nil
	}
	return &domain.PermissionError{
		Message: fmt.Sprintf("requires at least role %q", min),
	}
}

// CanManageDocument applies the ownership override: admins manage
// everything; a non-admin approver manages only documents they own or
// created.
func (g *Gate) CanManageDocument(p models.Principal, doc *models.Document) bool {
	role := g.effectiveRole(p)
	if role == RoleAdmin {
		return true
	}
	if role != RoleApprover {
		return false
	}
	return doc.Owner == p.Email || doc.CreatedBy == p.Email
}

// RequireDocumentDelete fails unless the principal may delete the document
// directly (admin, or approver who owns/created it). Other actors must go
// through a deletion request instead.
func (g *Gate) RequireDocumentDelete(p models.Principal, doc *models.Document) error {
	if g.CanManageDocument(p, doc) {
		return nil
	}
	return &domain.PermissionError{
		Message: "deleting this document requires admin rights or approver ownership",
	}
}

// RequireHistoryAccess fails unless the principal may fetch historical
// versions (admin or approver). The current version is open to any caller.
func (g *Gate) RequireHistoryAccess(p models.Principal) error {
	return g.Require(p, ActionHistory)
}

// CanDecideDeletion reports whether the principal may approve or reject a
// deletion request: the document owner it is addressed to, or an admin.
func (g *Gate) CanDecideDeletion(p models.Principal, req *models.DeletionRequest) bool {
	if g.effectiveRole(p) == RoleAdmin {
		return true
	}
	return req.OwnerEmail == p.Email
}

func (g *Gate) effectiveRole(p models.Principal) Role {
	if p.IsAdmin {
		return RoleAdmin
	}
	return Normalize(p.Role)
}
