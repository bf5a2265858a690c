package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// PostgresSubmissionRepository implements the SubmissionRepository interface
type PostgresSubmissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(config *RepositoryConfig) repositories.SubmissionRepository {
	return &PostgresSubmissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const submissionColumns = `id, target_folder_id, replaces_document_id, original_name, storage_path, uploaded_by, uploaded_at, status, change_notes, review_notes, reviewed_by, reviewed_at`

// Create inserts a pending submission
func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Submissions, submissionColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		sub.ID,
		sub.TargetFolderID,
		sub.ReplacesDocumentID,
		sub.OriginalName,
		sub.StoragePath,
		sub.UploadedBy,
		sub.UploadedAt,
		sub.Status,
		sub.ChangeNotes,
		sub.ReviewNotes,
		sub.ReviewedBy,
		sub.ReviewedAt,
	)

	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission by id
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, submissionColumns, r.tables.Submissions)

	executor := GetExecutor(ctx, r.pool)

	sub, err := scanSubmission(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return sub, nil
}

// MarkDecided transitions a pending submission to a terminal state. The
// WHERE status = 'pending' guard makes the transition single-shot even
// when two reviewers race.
func (r *PostgresSubmissionRepository) MarkDecided(ctx context.Context, sub *models.Submission) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, review_notes = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $5 AND status = 'pending'
	`, r.tables.Submissions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		sub.Status,
		sub.ReviewNotes,
		sub.ReviewedBy,
		sub.ReviewedAt,
		sub.ID,
	)

	if err != nil {
		return fmt.Errorf("decide submission: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message:      "submission has already been decided",
			ResourceType: "submission",
			ResourceID:   sub.ID,
		}
	}

	return nil
}

// Reopen reverts an approved submission to pending and clears the review
// fields. Only an approved row can be reopened; rejected stays terminal.
func (r *PostgresSubmissionRepository) Reopen(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'pending', review_notes = NULL, reviewed_by = NULL, reviewed_at = NULL
		WHERE id = $1 AND status = 'approved'
	`, r.tables.Submissions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reopen submission: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message:      "submission cannot be reopened",
			ResourceType: "submission",
			ResourceID:   id,
		}
	}

	return nil
}

// ListPending returns pending submissions, oldest first
func (r *PostgresSubmissionRepository) ListPending(ctx context.Context) ([]models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE status = 'pending'
		ORDER BY uploaded_at ASC
	`, submissionColumns, r.tables.Submissions)

	return r.list(ctx, query)
}

// ListByUploader returns every submission filed by the given email
func (r *PostgresSubmissionRepository) ListByUploader(ctx context.Context, email string) ([]models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE uploaded_by = $1
		ORDER BY uploaded_at DESC
	`, submissionColumns, r.tables.Submissions)

	return r.list(ctx, query, email)
}

// CountPending counts pending submissions
func (r *PostgresSubmissionRepository) CountPending(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE status = 'pending'
	`, r.tables.Submissions)

	executor := GetExecutor(ctx, r.pool)

	var count int
	if err := executor.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending submissions: %w", err)
	}

	return count, nil
}

func (r *PostgresSubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return subs, nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	err := row.Scan(
		&sub.ID,
		&sub.TargetFolderID,
		&sub.ReplacesDocumentID,
		&sub.OriginalName,
		&sub.StoragePath,
		&sub.UploadedBy,
		&sub.UploadedAt,
		&sub.Status,
		&sub.ChangeNotes,
		&sub.ReviewNotes,
		&sub.ReviewedBy,
		&sub.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
