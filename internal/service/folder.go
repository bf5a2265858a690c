package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
	"docvault/internal/realtime"
	"docvault/internal/storage"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	linkRepo   repositories.LinkRepository
	store      *storage.Store
	txManager  repositories.TransactionManager
	validator  *ResourceValidator
	gate       *auth.Gate
	bus        *realtime.Bus
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	linkRepo repositories.LinkRepository,
	store *storage.Store,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	gate *auth.Gate,
	bus *realtime.Bus,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		linkRepo:   linkRepo,
		store:      store,
		txManager:  txManager,
		validator:  validator,
		gate:       gate,
		bus:        bus,
		logger:     logger,
	}
}

var folderNameRule = []validation.Rule{
	validation.Required,
	validation.Length(1, config.MaxFolderNameLength),
	validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes"),
}

// Create creates a new folder under a parent
func (s *folderService) Create(ctx context.Context, p models.Principal, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.ParentID == "" {
		req.ParentID = models.RootFolderID
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRule...),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.validator.ValidateFolder(ctx, req.ParentID); err != nil {
		return nil, err
	}

	if err := s.checkSiblingName(ctx, req.ParentID, req.Name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Color:       req.Color,
		Description: req.Description,
		CreatedAt:   now,
		CreatedBy:   p.Email,
		UpdatedAt:   now,
		UpdatedBy:   p.Email,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"created_by", p.Email,
	)

	s.bus.Publish(realtime.FolderEvent(realtime.EventFolderCreated, folder.ID))

	return folder, nil
}

// Get retrieves a folder
func (s *folderService) Get(ctx context.Context, p models.Principal, id string) (*models.Folder, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, id)
}

// Update renames a folder or changes its color/description
func (s *folderService) Update(ctx context.Context, p models.Principal, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	if id == models.RootFolderID {
		if req.Name != nil {
			return nil, &domain.ValidationError{Message: "the root folder cannot be renamed"}
		}
		return nil, &domain.ValidationError{Message: "the root folder cannot be modified"}
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.Validate(name, folderNameRule...); err != nil {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("name: %v", err)}
		}
		if name != folder.Name {
			if err := s.checkSiblingName(ctx, folder.ParentID, name, folder.ID); err != nil {
				return nil, err
			}
		}
		folder.Name = name
	}
	if req.Color != nil {
		folder.Color = req.Color
	}
	if req.Description != nil {
		folder.Description = req.Description
	}

	folder.UpdatedAt = time.Now()
	folder.UpdatedBy = p.Email

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name, "updated_by", p.Email)

	return folder, nil
}

// Move reparents a folder. The ancestor walk re-validates the no-cycle
// invariant against current persisted state on every call; the UI is
// never trusted to prevent illegal moves.
func (s *folderService) Move(ctx context.Context, p models.Principal, id, newParentID string) (*models.Folder, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	if id == models.RootFolderID {
		return nil, &domain.ValidationError{Message: "the root folder cannot be moved"}
	}
	if newParentID == "" {
		newParentID = models.RootFolderID
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateFolder(ctx, newParentID); err != nil {
		return nil, err
	}

	if err := s.checkNoCycle(ctx, id, newParentID); err != nil {
		return nil, err
	}

	if newParentID != folder.ParentID {
		if err := s.checkSiblingName(ctx, newParentID, folder.Name, folder.ID); err != nil {
			return nil, err
		}
	}

	folder.ParentID = newParentID
	folder.UpdatedAt = time.Now()
	folder.UpdatedBy = p.Email

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", folder.ID, "new_parent_id", newParentID, "moved_by", p.Email)

	s.bus.Publish(realtime.FolderEvent(realtime.EventFolderMoved, folder.ID))

	return folder, nil
}

// Delete removes a folder without child folders. Its documents are
// reassigned to root and links into it are cleared in one transaction, so
// the event is only published after durable commit.
func (s *folderService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return err
	}

	if id == models.RootFolderID {
		return &domain.ValidationError{Message: "the root folder cannot be deleted"}
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.folderRepo.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q still has %d child folders", folder.Name, len(children)),
			ResourceType: "folder",
			ResourceID:   id,
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.ReassignPrimaryFolder(txCtx, id, models.RootFolderID, p.Email); err != nil {
			return err
		}
		if err := s.linkRepo.DeleteByFolder(txCtx, id); err != nil {
			return err
		}
		return s.folderRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id, "name", folder.Name, "deleted_by", p.Email)

	s.bus.Publish(realtime.FolderEvent(realtime.EventFolderDeleted, id))

	return nil
}

// Duplicate deep-clones a folder subtree under a target parent. Every
// folder and document in the clone gets a new id and every file is
// physically copied; only the top-level clone receives a " (copy)" name
// suffix, and only when a destination sibling already carries the name.
func (s *folderService) Duplicate(ctx context.Context, p models.Principal, id, targetParentID string) (*models.Folder, error) {
	if err := s.gate.RequireAtLeast(p, auth.RoleApprover); err != nil {
		return nil, err
	}

	if id == models.RootFolderID {
		return nil, &domain.ValidationError{Message: "the root folder cannot be duplicated"}
	}
	if targetParentID == "" {
		targetParentID = models.RootFolderID
	}

	src, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateFolder(ctx, targetParentID); err != nil {
		return nil, err
	}

	// Cloning into the source's own subtree would recurse into the clones.
	if err := s.checkNoCycle(ctx, id, targetParentID); err != nil {
		return nil, err
	}

	clone, err := s.cloneSubtree(ctx, p, src, targetParentID, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder duplicated",
		"source_id", id,
		"clone_id", clone.ID,
		"target_parent_id", targetParentID,
		"duplicated_by", p.Email,
	)

	s.bus.Publish(realtime.FolderEvent(realtime.EventFolderCreated, clone.ID))

	return clone, nil
}

// AncestorPath returns the ordered root→folder path
func (s *folderService) AncestorPath(ctx context.Context, p models.Principal, id string) ([]models.PathEntry, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	root := models.PathEntry{ID: models.RootFolderID, Name: "Root"}
	if id == models.RootFolderID {
		return []models.PathEntry{root}, nil
	}

	var reversed []models.PathEntry
	seen := map[string]bool{}
	currentID := id
	for currentID != models.RootFolderID {
		if seen[currentID] {
			return nil, &domain.ConflictError{
				Message:      "folder ancestry contains a cycle",
				ResourceType: "folder",
				ResourceID:   currentID,
			}
		}
		seen[currentID] = true

		folder, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, models.PathEntry{ID: folder.ID, Name: folder.Name})
		currentID = folder.ParentID
	}

	path := make([]models.PathEntry, 0, len(reversed)+1)
	path = append(path, root)
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}

	return path, nil
}

// Tree builds and returns the full nested folder/document tree
func (s *folderService) Tree(ctx context.Context, p models.Principal) (*services.Tree, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	allFolders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	allDocuments, err := s.docRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	nodeMap := make(map[string]*services.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		nodeMap[folder.ID] = &services.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Color:     folder.Color,
			Folders:   []*services.FolderTreeNode{},
			Documents: []models.Document{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	var rootFolders []*services.FolderTreeNode
	for _, folder := range allFolders {
		node := nodeMap[folder.ID]
		if folder.ParentID == models.RootFolderID {
			rootFolders = append(rootFolders, node)
		} else if parent, exists := nodeMap[folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: place documents into their primary folders
	rootDocuments := make([]models.Document, 0)
	for _, doc := range allDocuments {
		if doc.PrimaryFolderID == models.RootFolderID {
			rootDocuments = append(rootDocuments, doc)
		} else if parent, exists := nodeMap[doc.PrimaryFolderID]; exists {
			parent.Documents = append(parent.Documents, doc)
		}
	}

	if rootFolders == nil {
		rootFolders = []*services.FolderTreeNode{}
	}

	return &services.Tree{
		Folders:   rootFolders,
		Documents: rootDocuments,
	}, nil
}

// Contents lists a folder's child folders plus the documents homed or
// linked there, deduplicated.
func (s *folderService) Contents(ctx context.Context, p models.Principal, folderID string) (*services.FolderContents, error) {
	if err := s.gate.Require(p, auth.ActionRead); err != nil {
		return nil, err
	}

	var folder *models.Folder
	if folderID != models.RootFolderID {
		var err error
		folder, err = s.folderRepo.GetByID(ctx, folderID)
		if err != nil {
			return nil, err
		}
	}

	childFolders, err := s.folderRepo.ListChildren(ctx, folderID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByPrimaryFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(docs))
	for _, doc := range docs {
		present[doc.ID] = true
	}

	linkedIDs, err := s.linkRepo.ListDocumentsForFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	for _, docID := range linkedIDs {
		if present[docID] {
			continue
		}
		doc, err := s.docRepo.GetByID(ctx, docID)
		if err != nil {
			// A dangling link must not break folder listing.
			s.logger.Warn("linked document missing", "document_id", docID, "folder_id", folderID)
			continue
		}
		docs = append(docs, *doc)
		present[docID] = true
	}

	if childFolders == nil {
		childFolders = []models.Folder{}
	}
	if docs == nil {
		docs = []models.Document{}
	}

	return &services.FolderContents{
		Folder:    folder,
		Folders:   childFolders,
		Documents: docs,
	}, nil
}

// checkNoCycle ensures newParentID is neither the folder itself nor one
// of its descendants, by walking newParentID's ancestry up to root.
func (s *folderService) checkNoCycle(ctx context.Context, folderID, newParentID string) error {
	if folderID == newParentID {
		return &domain.ConflictError{
			Message:      "a folder cannot be placed under itself",
			ResourceType: "folder",
			ResourceID:   folderID,
		}
	}

	currentID := newParentID
	seen := map[string]bool{}
	for currentID != models.RootFolderID {
		if currentID == folderID {
			return &domain.ConflictError{
				Message:      "a folder cannot be placed under its own descendant",
				ResourceType: "folder",
				ResourceID:   folderID,
			}
		}
		if seen[currentID] {
			return &domain.ConflictError{
				Message:      "folder ancestry contains a cycle",
				ResourceType: "folder",
				ResourceID:   currentID,
			}
		}
		seen[currentID] = true

		parent, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		currentID = parent.ParentID
	}

	return nil
}

// checkSiblingName fails with a conflict when a different folder with the
// same name already exists under the parent.
func (s *folderService) checkSiblingName(ctx context.Context, parentID, name, excludeID string) error {
	siblings, err := s.folderRepo.ListChildren(ctx, parentID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

// cloneSubtree recursively copies a folder, its documents and its child
// folders under parentID.
func (s *folderService) cloneSubtree(ctx context.Context, p models.Principal, src *models.Folder, parentID string, top bool) (*models.Folder, error) {
	name := src.Name
	if top {
		siblings, err := s.folderRepo.ListChildren(ctx, parentID)
		if err != nil {
			return nil, err
		}
		taken := make(map[string]bool, len(siblings))
		for _, sibling := range siblings {
			taken[sibling.Name] = true
		}
		if taken[name] {
			candidate := name + " (copy)"
			for n := 2; taken[candidate]; n++ {
				candidate = fmt.Sprintf("%s (copy %d)", name, n)
			}
			name = candidate
		}
	}

	now := time.Now()
	clone := &models.Folder{
		Name:        name,
		ParentID:    parentID,
		Color:       src.Color,
		Description: src.Description,
		CreatedAt:   now,
		CreatedBy:   p.Email,
		UpdatedAt:   now,
		UpdatedBy:   p.Email,
	}
	if err := s.folderRepo.Create(ctx, clone); err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByPrimaryFolder(ctx, src.ID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if err := s.cloneDocument(ctx, p, &docs[i], clone.ID); err != nil {
			return nil, err
		}
	}

	children, err := s.folderRepo.ListChildren(ctx, src.ID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if _, err := s.cloneSubtree(ctx, p, &children[i], clone.ID, false); err != nil {
			return nil, err
		}
	}

	return clone, nil
}

// cloneDocument physically copies a document file to a new storage
// location and registers the copy under a new id at version 1.
func (s *folderService) cloneDocument(ctx context.Context, p models.Principal, src *models.Document, targetFolderID string) error {
	base := storage.BaseName(src.OriginalName)
	fileName := storage.SanitizeName(src.OriginalName)
	now := time.Now()

	unlock := s.store.LockSeries(src.SeriesKey)
	version, err := s.store.NextVersionNumber(base)
	if err != nil {
		unlock()
		return err
	}
	rel, size, err := s.store.CopyDocument(src.StoragePath, base, fileName, version, now)
	unlock()
	if err != nil {
		return err
	}

	copyDoc := &models.Document{
		OriginalName:    src.OriginalName,
		SeriesKey:       src.SeriesKey,
		StoragePath:     rel,
		Size:            size,
		MimeType:        src.MimeType,
		PrimaryFolderID: targetFolderID,
		CurrentVersion:  1,
		UploadedAt:      now,
		Owner:           src.Owner,
		CreatedBy:       p.Email,
		UpdatedAt:       now,
		UpdatedBy:       p.Email,
	}

	if err := s.docRepo.Create(ctx, copyDoc); err != nil {
		// Keep disk and registry consistent when the insert fails.
		_ = s.store.Remove(rel)
		return err
	}

	return nil
}
