package preview

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/storage"
)

// formats the rendering service accepts as input.
var convertibleExts = map[string]bool{
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".ppt":  true,
	".pptx": true,
	".odt":  true,
	".ods":  true,
}

// Cache serves rendered previews keyed by (documentId, version), stored
// under <uploadsRoot>/previews/. A cached entry is invalidated when the
// source file's mtime is newer, so external interference with the uploads
// tree does not serve stale previews.
type Cache struct {
	store    *storage.Store
	renderer Renderer
	logger   *slog.Logger
}

// NewCache creates a preview cache over the given store and renderer.
func NewCache(store *storage.Store, renderer Renderer, logger *slog.Logger) *Cache {
	return &Cache{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// Get returns the rendered PDF preview of a document version, rendering
// and caching on miss. PDFs are served as-is without conversion.
func (c *Cache) Get(ctx context.Context, doc *models.Document, version int, sourceRel string) ([]byte, error) {
	ext := strings.ToLower(path.Ext(doc.OriginalName))

	if ext == ".pdf" {
		return c.store.ReadFile(sourceRel)
	}

	if !convertibleExts[ext] {
		return nil, &domain.ConversionError{Message: "format has no preview support"}
	}

	cacheRel := c.store.PreviewPath(doc.ID, version, ".pdf")

	sourceMtime, err := c.store.ModTime(sourceRel)
	if err != nil {
		return nil, err
	}

	if cacheMtime, err := c.store.ModTime(cacheRel); err == nil && !cacheMtime.Before(sourceMtime) {
		return c.store.ReadFile(cacheRel)
	}

	src, err := c.store.ReadFile(sourceRel)
	if err != nil {
		return nil, err
	}

	pdf, err := c.renderer.Convert(ctx, src, strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, err
	}

	if err := c.store.WriteFile(cacheRel, pdf); err != nil {
		// Serving the render matters more than caching it.
		c.logger.Warn("failed to cache preview", "document_id", doc.ID, "version", version, "error", err)
	}

	return pdf, nil
}
