package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/handler"
	"docvault/internal/middleware"
	"docvault/internal/notify"
	"docvault/internal/preview"
	"docvault/internal/realtime"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier for the identity provider
	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer verifier.Close()

	// pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	linkRepo := postgres.NewLinkRepository(repoConfig)
	subRepo := postgres.NewSubmissionRepository(repoConfig)
	deletionRepo := postgres.NewDeletionRequestRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// File storage
	store, err := storage.NewStore(cfg.UploadsRoot)
	if err != nil {
		log.Fatalf("Failed to open uploads root: %v", err)
	}

	// Permission gate over the embedded role matrix
	registry, err := auth.NewRoleRegistry()
	if err != nil {
		log.Fatalf("Failed to load role matrix: %v", err)
	}
	gate := auth.NewGate(registry)

	// Realtime bus, previews, notifications
	bus := realtime.NewBus(logger)
	renderer := preview.NewHTTPRenderer(cfg.RenderServiceURL, cfg.RenderTimeout)
	previews := preview.NewCache(store, renderer, logger)
	notifier := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	// Services
	validator := service.NewResourceValidator(folderRepo)
	archiver := service.NewArchiver(versionRepo, store, logger)
	folderService := service.NewFolderService(folderRepo, docRepo, linkRepo, store, txManager, validator, gate, bus, logger)
	docService := service.NewDocumentService(docRepo, versionRepo, linkRepo, store, archiver, previews, txManager, validator, gate, bus, logger)
	linkService := service.NewLinkService(linkRepo, docRepo, txManager, validator, gate, logger)
	reviewService := service.NewReviewService(subRepo, docRepo, versionRepo, store, archiver, validator, gate, bus, notifier, logger)
	deletionService := service.NewDeletionService(deletionRepo, docRepo, docService, gate, notifier, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	treeHandler := handler.NewTreeHandler(folderService, logger)
	docHandler := handler.NewDocumentHandler(docService, linkService, cfg.MaxUploadBytes, cfg.MaxFilesPerRequest, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, cfg.MaxUploadBytes, logger)
	deletionHandler := handler.NewDeletionHandler(deletionService, logger)
	eventsHandler := handler.NewEventsHandler(bus, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Tree endpoint
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", folderHandler.MoveFolder)
	mux.HandleFunc("POST /api/folders/{id}/duplicate", folderHandler.DuplicateFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", folderHandler.GetFolderPath)
	mux.HandleFunc("GET /api/folders/{id}/contents", folderHandler.ListContents)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.Upload)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/move", docHandler.MoveDocument)
	mux.HandleFunc("GET /api/documents/{id}/versions", docHandler.ListVersions)
	mux.HandleFunc("GET /api/documents/{id}/content", docHandler.Download)
	mux.HandleFunc("GET /api/documents/{id}/preview", docHandler.Preview)
	mux.HandleFunc("GET /api/documents/{id}/folders", docHandler.GetFolders)
	mux.HandleFunc("PUT /api/documents/{id}/folders", docHandler.SetFolders)
	mux.HandleFunc("DELETE /api/documents/{id}/folders/{folderId}", docHandler.RemoveFolderLink)

	// Review routes
	mux.HandleFunc("POST /api/submissions", reviewHandler.Submit)
	mux.HandleFunc("GET /api/submissions/pending", reviewHandler.ListPending)
	mux.HandleFunc("GET /api/submissions/pending/count", reviewHandler.PendingCount)
	mux.HandleFunc("GET /api/submissions/mine", reviewHandler.ListMine)
	mux.HandleFunc("POST /api/submissions/{id}/approve", reviewHandler.Approve)
	mux.HandleFunc("POST /api/submissions/{id}/reject", reviewHandler.Reject)

	// Deletion-mediation routes
	mux.HandleFunc("POST /api/documents/{id}/deletion-requests", deletionHandler.Request)
	mux.HandleFunc("GET /api/deletion-requests", deletionHandler.ListForOwner)
	mux.HandleFunc("POST /api/deletion-requests/{id}/approve", deletionHandler.Approve)
	mux.HandleFunc("POST /api/deletion-requests/{id}/reject", deletionHandler.Reject)

	// Realtime events (SSE)
	mux.HandleFunc("GET /api/events", eventsHandler.Stream)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
