package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/repositories"
)

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(config *RepositoryConfig) repositories.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ReplaceForDocument replaces the additional-link set of a document
func (r *PostgresLinkRepository) ReplaceForDocument(ctx context.Context, documentID string, folderIDs []string) error {
	executor := GetExecutor(ctx, r.pool)

	deleteQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1
	`, r.tables.DocumentFolders)

	if _, err := executor.Exec(ctx, deleteQuery, documentID); err != nil {
		return fmt.Errorf("clear document links: %w", err)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (document_id, folder_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, r.tables.DocumentFolders)

	for _, folderID := range folderIDs {
		if _, err := executor.Exec(ctx, insertQuery, documentID, folderID); err != nil {
			if IsPgForeignKeyError(err) {
				return &domain.NotFoundError{Message: fmt.Sprintf("folder %s no longer exists", folderID)}
			}
			return fmt.Errorf("insert document link: %w", err)
		}
	}

	return nil
}

// ListFoldersForDocument returns the folder ids linked to a document
func (r *PostgresLinkRepository) ListFoldersForDocument(ctx context.Context, documentID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT folder_id
		FROM %s
		WHERE document_id = $1
		ORDER BY folder_id ASC
	`, r.tables.DocumentFolders)

	return r.listIDs(ctx, query, documentID)
}

// ListDocumentsForFolder returns the document ids linked into a folder
func (r *PostgresLinkRepository) ListDocumentsForFolder(ctx context.Context, folderID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT document_id
		FROM %s
		WHERE folder_id = $1
		ORDER BY document_id ASC
	`, r.tables.DocumentFolders)

	return r.listIDs(ctx, query, folderID)
}

// Delete removes one link row
func (r *PostgresLinkRepository) Delete(ctx context.Context, documentID, folderID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND folder_id = $2
	`, r.tables.DocumentFolders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, folderID); err != nil {
		return fmt.Errorf("delete document link: %w", err)
	}

	return nil
}

// DeleteByDocument removes all links of a document
func (r *PostgresLinkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1
	`, r.tables.DocumentFolders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete document links: %w", err)
	}

	return nil
}

// DeleteByFolder removes all links referencing a folder
func (r *PostgresLinkRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1
	`, r.tables.DocumentFolders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID); err != nil {
		return fmt.Errorf("delete folder links: %w", err)
	}

	return nil
}

func (r *PostgresLinkRepository) listIDs(ctx context.Context, query string, arg string) ([]string, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	return ids, nil
}
