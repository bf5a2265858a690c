package handler

import (
	"context"
	"log/slog"
	"net/http"

	"docvault/internal/domain/models"
	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// DeletionHandler handles deletion-mediation HTTP requests
type DeletionHandler struct {
	deletionService services.DeletionService
	logger          *slog.Logger
}

// NewDeletionHandler creates a new deletion handler
func NewDeletionHandler(deletionService services.DeletionService, logger *slog.Logger) *DeletionHandler {
	return &DeletionHandler{
		deletionService: deletionService,
		logger:          logger,
	}
}

// Request files a deletion request for a document
// POST /api/documents/{id}/deletion-requests
func (h *DeletionHandler) Request(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	req, err := h.deletionService.Request(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, req)
}

// Approve executes the deletion and closes the request
// POST /api/deletion-requests/{id}/approve
func (h *DeletionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.deletionService.Approve)
}

// Reject closes the request without deleting
// POST /api/deletion-requests/{id}/reject
func (h *DeletionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.deletionService.Reject)
}

// ListForOwner returns pending requests addressed to the caller
// GET /api/deletion-requests
func (h *DeletionHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	reqs, err := h.deletionService.ListForOwner(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reqs)
}

func (h *DeletionHandler) decide(w http.ResponseWriter, r *http.Request, decideFn func(ctx context.Context, p models.Principal, requestID string, notes *string) error) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Notes *string `json:"notes,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := decideFn(r.Context(), p, id, req.Notes); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
