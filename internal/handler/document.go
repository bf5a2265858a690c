package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService  services.DocumentService
	linkService services.LinkService
	maxBytes    int64
	maxFiles    int
	logger      *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, linkService services.LinkService, maxBytes int64, maxFiles int, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:  docService,
		linkService: linkService,
		maxBytes:    maxBytes,
		maxFiles:    maxFiles,
		logger:      logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload ingests one or more files from a multipart form
// POST /api/documents
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	// The size limit is per file; the request cap only has to hold a
	// full batch plus the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxFiles)*h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form or upload too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "no files in request")
		return
	}
	if len(files) > h.maxFiles {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per request", h.maxFiles))
		return
	}
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			httputil.RespondError(w, http.StatusBadRequest,
				fmt.Sprintf("file %q exceeds the %d byte limit", fh.Filename, h.maxBytes))
			return
		}
	}

	targetFolderID := r.FormValue("folder_id")

	docs := make([]*models.Document, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		doc, err := h.docService.Ingest(r.Context(), p, &services.IngestRequest{
			FileName:       fh.Filename,
			MimeType:       fh.Header.Get("Content-Type"),
			Size:           fh.Size,
			Content:        file,
			TargetFolderID: targetFolderID,
		})
		file.Close()
		if err != nil {
			handleError(w, err)
			return
		}
		docs = append(docs, doc)
	}

	httputil.RespondJSON(w, http.StatusCreated, docs)
}

// GetDocument retrieves document metadata
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.Get(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// MoveDocument changes a document's primary folder
// POST /api/documents/{id}/move
func (h *DocumentHandler) MoveDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		FolderID string `json:"folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.Move(r.Context(), p, id, req.FolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document and its history
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.Delete(r.Context(), p, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVersions returns a document's version history
// GET /api/documents/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.docService.ListVersions(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, entries)
}

// Download streams a document version's content. The version query
// parameter selects a historical version; absent means current.
// GET /api/documents/{id}/content
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	version := 0
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.RespondError(w, http.StatusBadRequest, "version must be a positive integer")
			return
		}
		version = n
	}

	content, err := h.docService.FetchVersion(r.Context(), p, id, version)
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Content.Close()

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.FileName}))
	if _, err := io.Copy(w, content.Content); err != nil {
		h.logger.Warn("download interrupted", "document_id", id, "error", err)
	}
}

// Preview returns the rendered PDF preview of the current version
// GET /api/documents/{id}/preview
func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	pdf, err := h.docService.Preview(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Write(pdf)
}

// GetFolders returns every folder the document appears in
// GET /api/documents/{id}/folders
func (h *DocumentHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folders, err := h.linkService.FoldersFor(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"folder_ids": folders})
}

// SetFolders replaces a document's additional folder links
// PUT /api/documents/{id}/folders
func (h *DocumentHandler) SetFolders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		FolderIDs []string `json:"folder_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folders, err := h.linkService.SetFolders(r.Context(), p, id, req.FolderIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"folder_ids": folders})
}

// RemoveFolderLink removes one additional folder association
// DELETE /api/documents/{id}/folders/{folderId}
func (h *DocumentHandler) RemoveFolderLink(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}

	if err := h.linkService.RemoveLink(r.Context(), p, id, folderID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
