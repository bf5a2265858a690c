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

// PostgresDeletionRequestRepository implements the DeletionRequestRepository interface
type PostgresDeletionRequestRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDeletionRequestRepository creates a new deletion request repository
func NewDeletionRequestRepository(config *RepositoryConfig) repositories.DeletionRequestRepository {
	return &PostgresDeletionRequestRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const deletionColumns = `id, document_id, requested_by, owner_email, requested_at, status, decision_notes, decided_at`

// Create inserts a pending deletion request
func (r *PostgresDeletionRequestRepository) Create(ctx context.Context, req *models.DeletionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.DeletionRequests, deletionColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		req.ID,
		req.DocumentID,
		req.RequestedBy,
		req.OwnerEmail,
		req.RequestedAt,
		req.Status,
		req.DecisionNotes,
		req.DecidedAt,
	)

	if err != nil {
		return fmt.Errorf("create deletion request: %w", err)
	}

	return nil
}

// GetByID retrieves a deletion request by id
func (r *PostgresDeletionRequestRepository) GetByID(ctx context.Context, id string) (*models.DeletionRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, deletionColumns, r.tables.DeletionRequests)

	executor := GetExecutor(ctx, r.pool)

	req, err := scanDeletionRequest(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("deletion request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get deletion request: %w", err)
	}

	return req, nil
}

// MarkDecided transitions a pending request to a terminal state
func (r *PostgresDeletionRequestRepository) MarkDecided(ctx context.Context, req *models.DeletionRequest) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, decision_notes = $2, decided_at = $3
		WHERE id = $4 AND status = 'pending'
	`, r.tables.DeletionRequests)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		req.Status,
		req.DecisionNotes,
		req.DecidedAt,
		req.ID,
	)

	if err != nil {
		return fmt.Errorf("decide deletion request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message:      "deletion request has already been decided",
			ResourceType: "deletion_request",
			ResourceID:   req.ID,
		}
	}

	return nil
}

// ListPendingForOwner returns pending requests addressed to an owner
func (r *PostgresDeletionRequestRepository) ListPendingForOwner(ctx context.Context, ownerEmail string) ([]models.DeletionRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_email = $1 AND status = 'pending'
		ORDER BY requested_at ASC
	`, deletionColumns, r.tables.DeletionRequests)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list deletion requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.DeletionRequest
	for rows.Next() {
		req, err := scanDeletionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deletion request: %w", err)
		}
		reqs = append(reqs, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deletion requests: %w", err)
	}

	return reqs, nil
}

func scanDeletionRequest(row pgx.Row) (*models.DeletionRequest, error) {
	var req models.DeletionRequest
	err := row.Scan(
		&req.ID,
		&req.DocumentID,
		&req.RequestedBy,
		&req.OwnerEmail,
		&req.RequestedAt,
		&req.Status,
		&req.DecisionNotes,
		&req.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
