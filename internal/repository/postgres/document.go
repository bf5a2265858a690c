package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const documentColumns = `id, original_name, series_key, storage_path, size, mime_type, primary_folder_id, current_version, uploaded_at, owner_email, created_by, updated_at, updated_by`

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tables.Documents, documentColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.OriginalName,
		doc.SeriesKey,
		doc.StoragePath,
		doc.Size,
		doc.MimeType,
		doc.PrimaryFolderID,
		doc.CurrentVersion,
		doc.UploadedAt,
		doc.Owner,
		doc.CreatedBy,
		doc.UpdatedAt,
		doc.UpdatedBy,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("document '%s': %w", doc.OriginalName, domain.ErrConflict)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	return r.scanOne(executor.QueryRow(ctx, query, id), id)
}

// GetBySeriesKey returns the document with the given series key
func (r *PostgresDocumentRepository) GetBySeriesKey(ctx context.Context, key string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE series_key = $1
		ORDER BY uploaded_at ASC
		LIMIT 1
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	return r.scanOne(executor.QueryRow(ctx, query, key), key)
}

// Update updates a document in place
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET original_name = $1, series_key = $2, storage_path = $3, size = $4,
		    mime_type = $5, primary_folder_id = $6, current_version = $7,
		    owner_email = $8, updated_at = $9, updated_by = $10
		WHERE id = $11
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.OriginalName,
		doc.SeriesKey,
		doc.StoragePath,
		doc.Size,
		doc.MimeType,
		doc.PrimaryFolderID,
		doc.CurrentVersion,
		doc.Owner,
		doc.UpdatedAt,
		doc.UpdatedBy,
		doc.ID,
	)

	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document row
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByPrimaryFolder lists documents homed in a folder
func (r *PostgresDocumentRepository) ListByPrimaryFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE primary_folder_id = $1
		ORDER BY original_name ASC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ReassignPrimaryFolder moves every document homed in fromFolderID to toFolderID
func (r *PostgresDocumentRepository) ReassignPrimaryFolder(ctx context.Context, fromFolderID, toFolderID, updatedBy string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET primary_folder_id = $1, updated_at = $2, updated_by = $3
		WHERE primary_folder_id = $4
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, toFolderID, time.Now(), updatedBy, fromFolderID); err != nil {
		return fmt.Errorf("reassign documents: %w", err)
	}

	return nil
}

// GetAll returns every document's metadata
func (r *PostgresDocumentRepository) GetAll(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY original_name ASC
	`, documentColumns, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *PostgresDocumentRepository) scanOne(row pgx.Row, ref string) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.OriginalName,
		&doc.SeriesKey,
		&doc.StoragePath,
		&doc.Size,
		&doc.MimeType,
		&doc.PrimaryFolderID,
		&doc.CurrentVersion,
		&doc.UploadedAt,
		&doc.Owner,
		&doc.CreatedBy,
		&doc.UpdatedAt,
		&doc.UpdatedBy,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.OriginalName,
			&doc.SeriesKey,
			&doc.StoragePath,
			&doc.Size,
			&doc.MimeType,
			&doc.PrimaryFolderID,
			&doc.CurrentVersion,
			&doc.UploadedAt,
			&doc.Owner,
			&doc.CreatedBy,
			&doc.UpdatedAt,
			&doc.UpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
