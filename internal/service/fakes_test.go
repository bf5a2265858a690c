package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// In-memory repository fakes. They mirror the postgres implementations'
// observable behavior (not-found errors, decided-once conflicts, sort
// orders) closely enough for service-level tests.

type fakeIDs struct {
	mu sync.Mutex
	n  int
}

func (f *fakeIDs) next(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("%s-%d", prefix, f.n)
}

var ids fakeIDs

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]models.Folder)}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if folder.ID == "" {
		folder.ID = ids.next("folder")
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "folder not found"}
	}
	return &folder, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, folder := range r.folders {
		if folder.ParentID == parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) GetAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, folder := range r.folders {
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]models.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]models.Document)}
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		doc.ID = ids.next("doc")
	}
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "document not found"}
	}
	return &doc, nil
}

func (r *fakeDocRepo) GetBySeriesKey(ctx context.Context, key string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.SeriesKey == key {
			d := doc
			return &d, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "document not found"}
}

func (r *fakeDocRepo) Update(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return &domain.NotFoundError{Message: "document not found"}
	}
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return &domain.NotFoundError{Message: "document not found"}
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocRepo) ListByPrimaryFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if doc.PrimaryFolderID == folderID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalName < out[j].OriginalName })
	return out, nil
}

func (r *fakeDocRepo) ReassignPrimaryFolder(ctx context.Context, fromFolderID, toFolderID, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, doc := range r.docs {
		if doc.PrimaryFolderID == fromFolderID {
			doc.PrimaryFolderID = toFolderID
			doc.UpdatedBy = updatedBy
			r.docs[id] = doc
		}
	}
	return nil
}

func (r *fakeDocRepo) GetAll(ctx context.Context) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalName < out[j].OriginalName })
	return out, nil
}

type fakeVersionRepo struct {
	mu      sync.Mutex
	records []models.VersionRecord
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{}
}

func (r *fakeVersionRepo) Create(ctx context.Context, record *models.VersionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.DocumentID == record.DocumentID && rec.Version == record.Version {
			return &domain.ConflictError{
				Message:      "version already archived",
				ResourceType: "version",
				ResourceID:   rec.ID,
			}
		}
	}
	if record.ID == "" {
		record.ID = ids.next("ver")
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.VersionRecord
	for _, rec := range r.records {
		if rec.DocumentID == documentID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *fakeVersionRepo) GetByDocumentAndVersion(ctx context.Context, documentID string, version int) (*models.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.DocumentID == documentID && rec.Version == version {
			out := rec
			return &out, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "version not found"}
}

func (r *fakeVersionRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.DocumentID != documentID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[string][]string // documentID -> folderIDs
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string][]string)}
}

func (r *fakeLinkRepo) ReplaceForDocument(ctx context.Context, documentID string, folderIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[documentID] = append([]string(nil), folderIDs...)
	return nil
}

func (r *fakeLinkRepo) ListFoldersForDocument(ctx context.Context, documentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links[documentID]...), nil
}

func (r *fakeLinkRepo) ListDocumentsForFolder(ctx context.Context, folderID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for docID, folders := range r.links {
		for _, f := range folders {
			if f == folderID {
				out = append(out, docID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeLinkRepo) Delete(ctx context.Context, documentID, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	folders := r.links[documentID]
	kept := folders[:0]
	for _, f := range folders {
		if f != folderID {
			kept = append(kept, f)
		}
	}
	r.links[documentID] = kept
	return nil
}

func (r *fakeLinkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, documentID)
	return nil
}

func (r *fakeLinkRepo) DeleteByFolder(ctx context.Context, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for docID, folders := range r.links {
		kept := folders[:0]
		for _, f := range folders {
			if f != folderID {
				kept = append(kept, f)
			}
		}
		r.links[docID] = kept
	}
	return nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs map[string]models.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[string]models.Submission)}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub.ID == "" {
		sub.ID = ids.next("sub")
	}
	r.subs[sub.ID] = *sub
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "submission not found"}
	}
	return &sub, nil
}

func (r *fakeSubmissionRepo) MarkDecided(ctx context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.subs[sub.ID]
	if !ok {
		return &domain.NotFoundError{Message: "submission not found"}
	}
	if stored.Status.Terminal() {
		return &domain.ConflictError{
			Message:      "submission already decided",
			ResourceType: "submission",
			ResourceID:   sub.ID,
		}
	}
	r.subs[sub.ID] = *sub
	return nil
}

func (r *fakeSubmissionRepo) Reopen(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.subs[id]
	if !ok || stored.Status != models.SubmissionApproved {
		return &domain.ConflictError{
			Message:      "submission cannot be reopened",
			ResourceType: "submission",
			ResourceID:   id,
		}
	}
	stored.Status = models.SubmissionPending
	stored.ReviewNotes = nil
	stored.ReviewedBy = nil
	stored.ReviewedAt = nil
	r.subs[id] = stored
	return nil
}

func (r *fakeSubmissionRepo) ListPending(ctx context.Context) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Submission
	for _, sub := range r.subs {
		if sub.Status == models.SubmissionPending {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *fakeSubmissionRepo) ListByUploader(ctx context.Context, email string) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Submission
	for _, sub := range r.subs {
		if sub.UploadedBy == email {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *fakeSubmissionRepo) CountPending(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, sub := range r.subs {
		if sub.Status == models.SubmissionPending {
			count++
		}
	}
	return count, nil
}

type fakeDeletionRepo struct {
	mu   sync.Mutex
	reqs map[string]models.DeletionRequest
}

func newFakeDeletionRepo() *fakeDeletionRepo {
	return &fakeDeletionRepo{reqs: make(map[string]models.DeletionRequest)}
}

func (r *fakeDeletionRepo) Create(ctx context.Context, req *models.DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = ids.next("delreq")
	}
	r.reqs[req.ID] = *req
	return nil
}

func (r *fakeDeletionRepo) GetByID(ctx context.Context, id string) (*models.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "deletion request not found"}
	}
	return &req, nil
}

func (r *fakeDeletionRepo) MarkDecided(ctx context.Context, req *models.DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reqs[req.ID]
	if !ok {
		return &domain.NotFoundError{Message: "deletion request not found"}
	}
	if stored.Status != models.DeletionPending {
		return &domain.ConflictError{
			Message:      "deletion request already decided",
			ResourceType: "deletion_request",
			ResourceID:   req.ID,
		}
	}
	r.reqs[req.ID] = *req
	return nil
}

func (r *fakeDeletionRepo) ListPendingForOwner(ctx context.Context, ownerEmail string) ([]models.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeletionRequest
	for _, req := range r.reqs {
		if req.OwnerEmail == ownerEmail && req.Status == models.DeletionPending {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

type fakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *fakeTxManager) txCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type notification struct {
	Recipient string
	Subject   string
	Body      string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(recipient, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{Recipient: recipient, Subject: subject, Body: body})
}

func (n *fakeNotifier) sentTo(recipient string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, msg := range n.sent {
		if msg.Recipient == recipient {
			out = append(out, msg)
		}
	}
	return out
}
