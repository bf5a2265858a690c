package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
)

func mustSubmit(t *testing.T, env *testEnv, p models.Principal, fileName, folderID, notes, content string) *models.Submission {
	t.Helper()
	sub, err := env.reviewSvc.Submit(context.Background(), p, &services.SubmitRequest{
		FileName:       fileName,
		Content:        strings.NewReader(content),
		TargetFolderID: folderID,
		ChangeNotes:    notes,
	})
	if err != nil {
		t.Fatalf("submit %q: %v", fileName, err)
	}
	return sub
}

func TestSubmitStagesFile(t *testing.T) {
	env := newTestEnv(t)

	sub := mustSubmit(t, env, reviewer, "Draft.pdf", "", "first draft", "staged data")

	if sub.Status != models.SubmissionPending {
		t.Errorf("status = %q", sub.Status)
	}
	if sub.UploadedBy != reviewer.Email {
		t.Errorf("uploaded by = %q", sub.UploadedBy)
	}

	// File lands in staging, not the main tree.
	if !strings.HasPrefix(sub.StoragePath, "staging") {
		t.Errorf("storage path = %q", sub.StoragePath)
	}
	data, err := env.store.ReadFile(sub.StoragePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "staged data" {
		t.Errorf("staged content = %q", data)
	}

	// Nothing visible as a document yet.
	if docs, _ := env.docs.GetAll(context.Background()); len(docs) != 0 {
		t.Errorf("documents before approval = %d", len(docs))
	}
}

func TestSubmitRequiresChangeNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, notes := range []string{"", "   "} {
		_, err := env.reviewSvc.Submit(ctx, reviewer, &services.SubmitRequest{
			FileName:    "Draft.pdf",
			Content:     strings.NewReader("x"),
			ChangeNotes: notes,
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("notes %q: got %v, want validation error", notes, err)
		}
	}
}

func TestSubmitRequiresReviewerRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reviewSvc.Submit(context.Background(), reader, &services.SubmitRequest{
		FileName:    "Draft.pdf",
		Content:     strings.NewReader("x"),
		ChangeNotes: "notes",
	})
	if !errors.Is(err, domain.ErrPermission) {
		t.Errorf("got %v, want permission error", err)
	}
}

func TestApproveCreatesNewDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, env, "Docs", "")
	sub := mustSubmit(t, env, reviewer, "Fresh.pdf", folder.ID, "initial", "fresh content")

	doc, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if doc.CurrentVersion != 1 {
		t.Errorf("version = %d, want 1", doc.CurrentVersion)
	}
	// Authorship credits the submitter, not the approver.
	if doc.Owner != reviewer.Email || doc.CreatedBy != reviewer.Email {
		t.Errorf("authorship = owner %q, created by %q", doc.Owner, doc.CreatedBy)
	}
	if doc.PrimaryFolderID != folder.ID {
		t.Errorf("folder = %q", doc.PrimaryFolderID)
	}

	data, err := env.store.ReadFile(doc.StoragePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fresh content" {
		t.Errorf("content = %q", data)
	}

	// Submitter is notified.
	if msgs := env.notifier.sentTo(reviewer.Email); len(msgs) != 1 {
		t.Errorf("notifications = %d, want 1", len(msgs))
	}
}

func TestApproveFuzzyMatchReplacesExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, env, "Manuals", "")
	existing := mustIngest(t, env, approver, "Quality Manual.pdf", folder.ID, "v1")

	// Same series under a revision-suffixed name, no explicit target.
	sub := mustSubmit(t, env, reviewer, "Quality Manual REV02.pdf", folder.ID, "rev 2", "v2")

	doc, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if doc.ID != existing.ID {
		t.Fatalf("fuzzy match created a new document: %q != %q", doc.ID, existing.ID)
	}
	if doc.CurrentVersion != 2 {
		t.Errorf("version = %d, want 2", doc.CurrentVersion)
	}
	if doc.OriginalName != "Quality Manual REV02.pdf" {
		t.Errorf("name = %q", doc.OriginalName)
	}
	// The series key survives the rename so exact-name uploads still match.
	if doc.SeriesKey != existing.SeriesKey {
		t.Errorf("series key changed: %q -> %q", existing.SeriesKey, doc.SeriesKey)
	}
	// Replacement credits the submitter.
	if doc.Owner != reviewer.Email {
		t.Errorf("owner = %q", doc.Owner)
	}

	records, _ := env.versions.ListByDocument(ctx, doc.ID)
	if len(records) != 1 || records[0].ArchivedBy != reviewer.Email {
		t.Errorf("archive records = %+v", records)
	}
}

func TestApproveExplicitTargetOverridesMatching(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	target := mustIngest(t, env, approver, "Unrelated.pdf", "", "old")
	sub := mustSubmit(t, env, reviewer, "Completely Different.pdf", "", "replace", "new")

	targetID := target.ID
	doc, err := env.reviewSvc.Approve(ctx, approver, sub.ID, &services.ApproveRequest{
		ReplaceDocumentID: &targetID,
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if doc.ID != target.ID {
		t.Errorf("explicit target ignored: %q", doc.ID)
	}
	if doc.CurrentVersion != 2 {
		t.Errorf("version = %d, want 2", doc.CurrentVersion)
	}
}

func TestApproveUnresolvedCreatesNew(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustIngest(t, env, approver, "Alpha.pdf", "", "a")
	sub := mustSubmit(t, env, reviewer, "Omega.pdf", "", "new doc", "o")

	doc, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if doc.OriginalName != "Omega.pdf" || doc.CurrentVersion != 1 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub := mustSubmit(t, env, reviewer, "Once.pdf", "", "once", "x")
	if _, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second approve: got %v, want conflict", err)
	}
}

func TestRejectRequiresNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub := mustSubmit(t, env, reviewer, "Rejected.pdf", "", "try", "x")

	if _, err := env.reviewSvc.Reject(ctx, approver, sub.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank notes: got %v, want validation error", err)
	}

	rejected, err := env.reviewSvc.Reject(ctx, approver, sub.ID, "wrong folder")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.SubmissionRejected {
		t.Errorf("status = %q", rejected.Status)
	}
	if rejected.ReviewNotes == nil || *rejected.ReviewNotes != "wrong folder" {
		t.Errorf("review notes = %v", rejected.ReviewNotes)
	}

	// Staged file cleaned up, submitter notified with the reason.
	if _, err := env.store.Open(sub.StoragePath); !errors.Is(err, domain.ErrNotFound) {
		t.Error("staged file survived rejection")
	}
	msgs := env.notifier.sentTo(reviewer.Email)
	if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "wrong folder") {
		t.Errorf("notifications = %+v", msgs)
	}

	// Terminal; cannot decide again.
	if _, err := env.reviewSvc.Reject(ctx, approver, sub.ID, "again"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second reject: got %v, want conflict", err)
	}
}

func TestReviewQueuePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustSubmit(t, env, reviewer, "One.pdf", "", "one", "x")
	mustSubmit(t, env, reviewer, "Two.pdf", "", "two", "y")

	if _, err := env.reviewSvc.ListPending(ctx, reviewer); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("reviewer listing queue: got %v, want permission error", err)
	}

	pending, err := env.reviewSvc.ListPending(ctx, approver)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}

	count, err := env.reviewSvc.PendingCount(ctx, approver)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// Anyone sees their own submissions.
	mine, err := env.reviewSvc.ListMine(ctx, reviewer)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("mine = %d, want 2", len(mine))
	}
}

func TestApproveRevertsClaimWhenPromotionFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub := mustSubmit(t, env, reviewer, "Fragile.pdf", "", "first draft", "data")
	if err := env.store.Remove(sub.StoragePath); err != nil {
		t.Fatal(err)
	}

	if _, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil); err == nil {
		t.Fatal("approve succeeded without a staged file")
	}

	stored, err := env.subs.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.SubmissionPending {
		t.Fatalf("status after failed approve = %q, want pending", stored.Status)
	}
	if stored.ReviewedBy != nil || stored.ReviewedAt != nil {
		t.Error("review fields should be cleared after a failed approve")
	}

	// A retry succeeds once the staged file is back.
	if err := env.store.WriteFile(sub.StoragePath, []byte("data")); err != nil {
		t.Fatal(err)
	}
	doc, err := env.reviewSvc.Approve(ctx, approver, sub.ID, nil)
	if err != nil {
		t.Fatalf("retry approve: %v", err)
	}

	stored, err = env.subs.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.SubmissionApproved {
		t.Errorf("status after retry = %q, want approved", stored.Status)
	}
	if doc.Owner != reviewer.Email {
		t.Errorf("owner = %q, want submitter", doc.Owner)
	}
}

func TestApproveAndUploadSameNameGetDistinctVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, env, "Reports", "")
	existing := mustIngest(t, env, approver, "Report.pdf", folder.ID, "v1")

	sub, err := env.reviewSvc.Submit(ctx, reviewer, &services.SubmitRequest{
		FileName:           "Report REV03.pdf",
		Content:            strings.NewReader("revised"),
		TargetFolderID:     folder.ID,
		ChangeNotes:        "third revision",
		ReplacesDocumentID: &existing.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The merge writes into the submission's base directory, where a
	// direct upload of the same name also lands. Run both at once: the
	// version numbers must never collide.
	var wg sync.WaitGroup
	var approveErr, ingestErr error
	var uploaded *models.Document
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = env.reviewSvc.Approve(ctx, approver, sub.ID, nil)
	}()
	go func() {
		defer wg.Done()
		uploaded, ingestErr = env.docSvc.Ingest(ctx, approver, &services.IngestRequest{
			FileName:       "Report REV03.pdf",
			Content:        strings.NewReader("direct upload"),
			TargetFolderID: folder.ID,
		})
	}()
	wg.Wait()

	if approveErr != nil {
		t.Fatalf("approve: %v", approveErr)
	}
	if ingestErr != nil {
		t.Fatalf("ingest: %v", ingestErr)
	}

	merged, err := env.docs.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if merged.StoragePath == uploaded.StoragePath {
		t.Fatalf("merged and uploaded files collided on %q", merged.StoragePath)
	}
	for _, rel := range []string{merged.StoragePath, uploaded.StoragePath} {
		rc, err := env.store.Open(rel)
		if err != nil {
			t.Errorf("open %q: %v", rel, err)
			continue
		}
		rc.Close()
	}
}
