package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
)

func TestIngestNewDocument(t *testing.T) {
	env := newTestEnv(t)

	folder := mustCreateFolder(t, env, "Reports", "")
	doc := mustIngest(t, env, approver, "Annual Report.pdf", folder.ID, "v1 data")

	if doc.CurrentVersion != 1 {
		t.Errorf("version = %d, want 1", doc.CurrentVersion)
	}
	if doc.Owner != approver.Email {
		t.Errorf("owner = %q", doc.Owner)
	}
	if doc.SeriesKey != "annual report" {
		t.Errorf("series key = %q", doc.SeriesKey)
	}
	if !strings.Contains(doc.StoragePath, "Versao 1") {
		t.Errorf("storage path = %q", doc.StoragePath)
	}

	data, err := env.store.ReadFile(doc.StoragePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1 data" {
		t.Errorf("content = %q", data)
	}
}

func TestIngestSameSeriesArchivesAndKeepsID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, env, "Reports", "")
	first := mustIngest(t, env, approver, "Report.pdf", folder.ID, "v1")
	second := mustIngest(t, env, admin, "report.PDF", folder.ID, "v2")

	if second.ID != first.ID {
		t.Fatalf("replacement changed id: %q -> %q", first.ID, second.ID)
	}
	if second.CurrentVersion != 2 {
		t.Errorf("version = %d, want 2", second.CurrentVersion)
	}
	if second.Owner != admin.Email {
		t.Errorf("owner = %q, want uploader", second.Owner)
	}

	// The superseded file is archived with a record crediting the archiver.
	records, err := env.versions.ListByDocument(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("archive records = %d, want 1", len(records))
	}
	if records[0].Version != 1 {
		t.Errorf("archived version = %d, want 1", records[0].Version)
	}
	data, err := env.store.ReadFile(records[0].StoragePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1" {
		t.Errorf("archived content = %q", data)
	}

	// Live file serves the new content.
	live, err := env.store.ReadFile(second.StoragePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(live) != "v2" {
		t.Errorf("live content = %q", live)
	}
}

func TestIngestDifferentSeriesCreatesSeparateDocuments(t *testing.T) {
	env := newTestEnv(t)

	a := mustIngest(t, env, approver, "Alpha.pdf", "", "a")
	b := mustIngest(t, env, approver, "Beta.pdf", "", "b")

	if a.ID == b.ID {
		t.Error("distinct series share a document id")
	}
}

func TestIngestRequiresApprover(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.docSvc.Ingest(context.Background(), reviewer, &services.IngestRequest{
		FileName: "direct.pdf",
		Content:  strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrPermission) {
		t.Errorf("got %v, want permission error", err)
	}
}

func TestListVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := mustIngest(t, env, approver, "Budget.pdf", "", "v1")
	mustIngest(t, env, approver, "Budget.pdf", "", "v2")
	mustIngest(t, env, approver, "Budget.pdf", "", "v3")

	entries, err := env.docSvc.ListVersions(ctx, reader, doc.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if !entries[0].Current || entries[0].Version != 3 {
		t.Errorf("first entry = %+v, want current v3", entries[0])
	}
	// Archived entries descend with no gaps.
	if entries[1].Version != 2 || entries[2].Version != 1 {
		t.Errorf("archived order = v%d, v%d", entries[1].Version, entries[2].Version)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Label, "Versão ") {
			t.Errorf("label = %q", e.Label)
		}
	}
}

func TestFetchVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := mustIngest(t, env, approver, "Budget.pdf", "", "v1")
	mustIngest(t, env, approver, "Budget.pdf", "", "v2")

	// Current version is open to any role.
	current, err := env.docSvc.FetchVersion(ctx, reader, doc.ID, 0)
	if err != nil {
		t.Fatalf("fetch current: %v", err)
	}
	data, _ := io.ReadAll(current.Content)
	current.Content.Close()
	if string(data) != "v2" {
		t.Errorf("current content = %q", data)
	}
	if current.Version != 2 {
		t.Errorf("current version = %d", current.Version)
	}

	// Historical versions are restricted.
	if _, err := env.docSvc.FetchVersion(ctx, reader, doc.ID, 1); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("reader fetching history: got %v, want permission error", err)
	}

	historical, err := env.docSvc.FetchVersion(ctx, approver, doc.ID, 1)
	if err != nil {
		t.Fatalf("approver fetching history: %v", err)
	}
	data, _ = io.ReadAll(historical.Content)
	historical.Content.Close()
	if string(data) != "v1" {
		t.Errorf("historical content = %q", data)
	}

	// Unknown version number.
	if _, err := env.docSvc.FetchVersion(ctx, approver, doc.ID, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown version: got %v, want not found", err)
	}
}

func TestMoveDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	from := mustCreateFolder(t, env, "From", "")
	to := mustCreateFolder(t, env, "To", "")
	doc := mustIngest(t, env, approver, "move-me.pdf", from.ID, "x")
	pathBefore := doc.StoragePath

	moved, err := env.docSvc.Move(ctx, approver, doc.ID, to.ID)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.PrimaryFolderID != to.ID {
		t.Errorf("primary folder = %q", moved.PrimaryFolderID)
	}
	if moved.StoragePath != pathBefore {
		t.Error("moving between folders must not touch storage")
	}
}

func TestDeleteDocumentOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := mustIngest(t, env, approver, "mine.pdf", "", "x")

	// A different approver neither owns nor created it.
	other := models.Principal{UserID: "u-other", Email: "other@example.com", Role: "approver"}
	if err := env.docSvc.Delete(ctx, other, doc.ID); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("foreign approver delete: got %v, want permission error", err)
	}

	// Admin always may.
	if err := env.docSvc.Delete(ctx, admin, doc.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := env.docs.GetByID(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("document row survived deletion")
	}
}

func TestDeleteDocumentRemovesHistoryAndLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	extra := mustCreateFolder(t, env, "Extra", "")
	doc := mustIngest(t, env, approver, "full.pdf", "", "v1")
	mustIngest(t, env, approver, "full.pdf", "", "v2")
	if _, err := env.linkSvc.SetFolders(ctx, approver, doc.ID, []string{extra.ID}); err != nil {
		t.Fatal(err)
	}

	records, _ := env.versions.ListByDocument(ctx, doc.ID)
	if len(records) != 1 {
		t.Fatalf("precondition: archive records = %d", len(records))
	}
	archivedPath := records[0].StoragePath

	if err := env.docSvc.Delete(ctx, approver, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if records, _ := env.versions.ListByDocument(ctx, doc.ID); len(records) != 0 {
		t.Error("version records survived deletion")
	}
	if linked, _ := env.links.ListFoldersForDocument(ctx, doc.ID); len(linked) != 0 {
		t.Error("links survived deletion")
	}
	if _, err := env.store.Open(archivedPath); !errors.Is(err, domain.ErrNotFound) {
		t.Error("archived file survived deletion")
	}
}

func TestPreviewUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	doc := mustIngest(t, env, approver, "data.bin", "", "binary")
	_, err := env.docSvc.Preview(context.Background(), reader, doc.ID)
	if !errors.Is(err, domain.ErrConversion) {
		t.Errorf("got %v, want conversion error", err)
	}
}

func TestPreviewServesPDFAsIs(t *testing.T) {
	env := newTestEnv(t)

	doc := mustIngest(t, env, approver, "plain.pdf", "", "%PDF-1.4 stub")
	pdf, err := env.docSvc.Preview(context.Background(), reader, doc.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if string(pdf) != "%PDF-1.4 stub" {
		t.Errorf("preview content = %q", pdf)
	}
}
