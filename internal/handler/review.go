package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// ReviewHandler handles the submit/approve/reject workflow
type ReviewHandler struct {
	reviewService services.ReviewService
	maxBytes      int64
	logger        *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService services.ReviewService, maxBytes int64, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// Submit stages one file for review; exactly one file per call
// POST /api/submissions
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form or upload too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		httputil.RespondError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}

	file, err := files[0].Open()
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	req := &services.SubmitRequest{
		FileName:       files[0].Filename,
		Content:        file,
		Size:           files[0].Size,
		TargetFolderID: r.FormValue("folder_id"),
		ChangeNotes:    r.FormValue("change_notes"),
	}
	if v := r.FormValue("replaces_document_id"); v != "" {
		req.ReplacesDocumentID = &v
	}

	sub, err := h.reviewService.Submit(r.Context(), p, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sub)
}

// Approve merges a pending submission into the document store
// POST /api/submissions/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.ApproveRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	doc, err := h.reviewService.Approve(r.Context(), p, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Reject marks a pending submission rejected with mandatory notes
// POST /api/submissions/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.reviewService.Reject(r.Context(), p, id, req.Notes)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sub)
}

// ListPending returns pending submissions, oldest first
// GET /api/submissions/pending
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	subs, err := h.reviewService.ListPending(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, subs)
}

// ListMine returns the caller's own submissions
// GET /api/submissions/mine
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	subs, err := h.reviewService.ListMine(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, subs)
}

// PendingCount returns the pending-submission count for the review badge
// GET /api/submissions/pending/count
func (h *ReviewHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	count, err := h.reviewService.PendingCount(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}
