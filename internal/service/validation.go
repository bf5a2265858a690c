package service

import (
	"context"
	"fmt"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// ResourceValidator checks that referenced parent resources exist before
// allowing operations on children.
type ResourceValidator struct {
	folders repositories.FolderRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(folders repositories.FolderRepository) *ResourceValidator {
	return &ResourceValidator{folders: folders}
}

// ValidateFolder ensures a folder id references the root sentinel or an
// existing row. Unknown ids surface as validation errors so callers can
// distinguish "bad input" from "missing resource being operated on".
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID string) error {
	if folderID == models.RootFolderID {
		return nil
	}
	if folderID == "" {
		return &domain.ValidationError{Message: "folder id is required"}
	}

	if _, err := v.folders.GetByID(ctx, folderID); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("folder %q does not exist", folderID)}
	}
	return nil
}
