package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// TreeHandler handles HTTP requests for the full folder/document tree
type TreeHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(folderService services.FolderService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// GetTree returns the nested folder/document tree from the root down
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	tree, err := h.folderService.Tree(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
