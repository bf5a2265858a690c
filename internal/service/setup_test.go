package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"docvault/internal/auth"
	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
	"docvault/internal/notify"
	"docvault/internal/preview"
	"docvault/internal/realtime"
	"docvault/internal/storage"
)

var (
	admin    = models.Principal{UserID: "u-admin", Email: "admin@example.com", Role: "admin"}
	approver = models.Principal{UserID: "u-approver", Email: "approver@example.com", Role: "approver"}
	reviewer = models.Principal{UserID: "u-reviewer", Email: "reviewer@example.com", Role: "reviewer"}
	reader   = models.Principal{UserID: "u-reader", Email: "reader@example.com", Role: "reader"}
)

type testEnv struct {
	folders   *fakeFolderRepo
	docs      *fakeDocRepo
	versions  *fakeVersionRepo
	links     *fakeLinkRepo
	subs      *fakeSubmissionRepo
	deletions *fakeDeletionRepo
	store     *storage.Store
	bus       *realtime.Bus
	notifier  *fakeNotifier
	tx        *fakeTxManager

	folderSvc   services.FolderService
	docSvc      services.DocumentService
	linkSvc     services.LinkService
	reviewSvc   services.ReviewService
	deletionSvc services.DeletionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	registry, err := auth.NewRoleRegistry()
	if err != nil {
		t.Fatalf("NewRoleRegistry: %v", err)
	}
	gate := auth.NewGate(registry)

	env := &testEnv{
		folders:   newFakeFolderRepo(),
		docs:      newFakeDocRepo(),
		versions:  newFakeVersionRepo(),
		links:     newFakeLinkRepo(),
		subs:      newFakeSubmissionRepo(),
		deletions: newFakeDeletionRepo(),
		store:     store,
		bus:       realtime.NewBus(logger),
		notifier:  &fakeNotifier{},
		tx:        &fakeTxManager{},
	}

	validator := NewResourceValidator(env.folders)
	archiver := NewArchiver(env.versions, store, logger)
	renderer := preview.NewHTTPRenderer("", time.Second)
	previews := preview.NewCache(store, renderer, logger)
	env.folderSvc = NewFolderService(env.folders, env.docs, env.links, store, env.tx, validator, gate, env.bus, logger)
	env.docSvc = NewDocumentService(env.docs, env.versions, env.links, store, archiver, previews, env.tx, validator, gate, env.bus, logger)
	env.linkSvc = NewLinkService(env.links, env.docs, env.tx, validator, gate, logger)
	env.reviewSvc = NewReviewService(env.subs, env.docs, env.versions, store, archiver, validator, gate, env.bus, env.notifier, logger)
	env.deletionSvc = NewDeletionService(env.deletions, env.docs, env.docSvc, gate, env.notifier, logger)

	return env
}

var _ notify.Notifier = (*fakeNotifier)(nil)
