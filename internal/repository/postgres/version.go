package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const versionColumns = `id, document_id, version, original_name, storage_path, archived_at, archived_by`

// Create inserts an archive record. The UNIQUE (document_id, version)
// constraint turns a duplicate-version race into a conflict error.
func (r *PostgresVersionRepository) Create(ctx context.Context, record *models.VersionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Versions, versionColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		record.ID,
		record.DocumentID,
		record.Version,
		record.OriginalName,
		record.StoragePath,
		record.ArchivedAt,
		record.ArchivedBy,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("version %d of document %s: %w", record.Version, record.DocumentID, domain.ErrConflict)
		}
		return fmt.Errorf("create version record: %w", err)
	}

	return nil
}

// ListByDocument returns archived records for a document, newest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.VersionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY version DESC
	`, versionColumns, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []models.VersionRecord
	for rows.Next() {
		var record models.VersionRecord
		err := rows.Scan(
			&record.ID,
			&record.DocumentID,
			&record.Version,
			&record.OriginalName,
			&record.StoragePath,
			&record.ArchivedAt,
			&record.ArchivedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version records: %w", err)
	}

	return records, nil
}

// GetByDocumentAndVersion retrieves one archived snapshot
func (r *PostgresVersionRepository) GetByDocumentAndVersion(ctx context.Context, documentID string, version int) (*models.VersionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1 AND version = $2
	`, versionColumns, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)

	var record models.VersionRecord
	err := executor.QueryRow(ctx, query, documentID, version).Scan(
		&record.ID,
		&record.DocumentID,
		&record.Version,
		&record.OriginalName,
		&record.StoragePath,
		&record.ArchivedAt,
		&record.ArchivedBy,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %d of document %s: %w", version, documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version record: %w", err)
	}

	return &record, nil
}

// DeleteByDocument removes all archive rows of a document
func (r *PostgresVersionRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete version records: %w", err)
	}

	return nil
}
