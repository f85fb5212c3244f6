package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new attachment row and assigns its id
func (r *AttachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	query := `
		INSERT INTO attachments (
			request_id, stored_filename, original_filename, content_type,
			size_bytes, storage_path, description, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		attachment.RequestID,
		attachment.StoredFilename,
		attachment.OriginalFilename,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.StoragePath,
		attachment.Description,
		attachment.Active,
		attachment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment",
			zap.String("request_id", attachment.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	attachment.ID = id
	return nil
}

// GetByID retrieves an attachment by ID, active or not
func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	query := `
		SELECT id, request_id, stored_filename, original_filename, content_type,
			size_bytes, storage_path, description, active, created_at
		FROM attachments
		WHERE id = ?
	`

	var attachment entity.Attachment
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.RequestID,
		&attachment.StoredFilename,
		&attachment.OriginalFilename,
		&attachment.ContentType,
		&attachment.SizeBytes,
		&attachment.StoragePath,
		&attachment.Description,
		&attachment.Active,
		&attachment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	return &attachment, nil
}

// ListByRequestID retrieves the active attachments of a request, oldest first
func (r *AttachmentRepository) ListByRequestID(ctx context.Context, requestID string) ([]*entity.Attachment, error) {
	query := `
		SELECT id, request_id, stored_filename, original_filename, content_type,
			size_bytes, storage_path, description, active, created_at
		FROM attachments
		WHERE request_id = ? AND active = 1
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		var attachment entity.Attachment
		err := rows.Scan(
			&attachment.ID,
			&attachment.RequestID,
			&attachment.StoredFilename,
			&attachment.OriginalFilename,
			&attachment.ContentType,
			&attachment.SizeBytes,
			&attachment.StoragePath,
			&attachment.Description,
			&attachment.Active,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &attachment)
	}

	return attachments, rows.Err()
}

// CountByRequestID counts the active attachments of a request
func (r *AttachmentRepository) CountByRequestID(ctx context.Context, requestID string) (int, error) {
	query := `SELECT COUNT(*) FROM attachments WHERE request_id = ? AND active = 1`

	var count int
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, requestID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count attachments", zap.String("request_id", requestID), zap.Error(err))
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}

	return count, nil
}

// Deactivate soft-deletes an attachment
func (r *AttachmentRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE attachments SET active = 0 WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to deactivate attachment", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate attachment: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
