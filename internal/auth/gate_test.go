package auth

import (
	"errors"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	registry, err := NewRoleRegistry()
	if err != nil {
		t.Fatalf("NewRoleRegistry: %v", err)
	}
	return NewGate(registry)
}

func TestRequire(t *testing.T) {
	gate := newTestGate(t)

	tests := []struct {
		name    string
		role    string
		action  Action
		allowed bool
	}{
		{"reader reads", "reader", ActionRead, true},
		{"reader cannot submit", "reader", ActionSubmit, false},
		{"reviewer submits", "reviewer", ActionSubmit, true},
		{"reviewer cannot approve", "reviewer", ActionApprove, false},
		{"approver approves", "approver", ActionApprove, true},
		{"approver views history", "approver", ActionHistory, true},
		{"approver cannot manage", "approver", ActionManage, false},
		{"admin passes everything", "admin", ActionManage, true},
		{"unknown role treated as reader", "superuser", ActionSubmit, false},
		{"empty role treated as reader", "", ActionRead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Principal{Email: "user@example.com", Role: tt.role}
			err := gate.Require(p, tt.action)
			if tt.allowed && err != nil {
				t.Errorf("Require = %v, want allowed", err)
			}
			if !tt.allowed && !errors.Is(err, domain.ErrPermission) {
				t.Errorf("Require = %v, want permission error", err)
			}
		})
	}
}

func TestRequireAtLeast(t *testing.T) {
	gate := newTestGate(t)

	reviewer := models.Principal{Email: "r@example.com", Role: "reviewer"}
	if err := gate.RequireAtLeast(reviewer, RoleApprover); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("reviewer as approver: %v", err)
	}
	if err := gate.RequireAtLeast(reviewer, RoleReviewer); err != nil {
		t.Errorf("reviewer as reviewer: %v", err)
	}

	// The admin claim outranks the role string.
	elevated := models.Principal{Email: "e@example.com", Role: "reader", IsAdmin: true}
	if err := gate.RequireAtLeast(elevated, RoleAdmin); err != nil {
		t.Errorf("admin claim ignored: %v", err)
	}
}

func TestCanManageDocument(t *testing.T) {
	gate := newTestGate(t)

	doc := &models.Document{
		ID:        "d-1",
		Owner:     "owner@example.com",
		CreatedBy: "creator@example.com",
	}

	tests := []struct {
		name string
		p    models.Principal
		want bool
	}{
		{"admin", models.Principal{Email: "a@example.com", Role: "admin"}, true},
		{"owning approver", models.Principal{Email: "owner@example.com", Role: "approver"}, true},
		{"creating approver", models.Principal{Email: "creator@example.com", Role: "approver"}, true},
		{"foreign approver", models.Principal{Email: "other@example.com", Role: "approver"}, false},
		{"owning reviewer", models.Principal{Email: "owner@example.com", Role: "reviewer"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.CanManageDocument(tt.p, doc); got != tt.want {
				t.Errorf("CanManageDocument = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDecideDeletion(t *testing.T) {
	gate := newTestGate(t)

	req := &models.DeletionRequest{ID: "r-1", OwnerEmail: "owner@example.com"}

	owner := models.Principal{Email: "owner@example.com", Role: "approver"}
	if !gate.CanDecideDeletion(owner, req) {
		t.Error("addressed owner refused")
	}

	admin := models.Principal{Email: "a@example.com", Role: "admin"}
	if !gate.CanDecideDeletion(admin, req) {
		t.Error("admin refused")
	}

	other := models.Principal{Email: "other@example.com", Role: "approver"}
	if gate.CanDecideDeletion(other, req) {
		t.Error("unaddressed approver allowed")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"reader", RoleReader},
		{"reviewer", RoleReviewer},
		{"approver", RoleApprover},
		{"admin", RoleAdmin},
		{"", RoleReader},
		{"root", RoleReader},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
