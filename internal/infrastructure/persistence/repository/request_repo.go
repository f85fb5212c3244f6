package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// RequestRepository implements port.RequestRepository
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, employee_id, title, description, category, requested_amount,
	approved_amount, expense_date, status, approver_id, approved_at,
	approval_note, payer_id, paid_at, payment_note, cancelled_at,
	cancel_reason, active, created_at, updated_at
`

// Create inserts a new reimbursement request
func (r *RequestRepository) Create(ctx context.Context, request *entity.ReimbursementRequest) error {
	query := `
		INSERT INTO reimbursement_requests (
			id, employee_id, title, description, category, requested_amount,
			approved_amount, expense_date, status, approver_id, approved_at,
			approval_note, payer_id, paid_at, payment_note, cancelled_at,
			cancel_reason, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		request.ID,
		request.EmployeeID,
		request.Title,
		request.Description,
		request.Category.String(),
		request.RequestedAmount,
		request.ApprovedAmount,
		request.ExpenseDate,
		request.Status.String(),
		request.ApproverID,
		request.ApprovedAt,
		request.ApprovalNote,
		request.PayerID,
		request.PaidAt,
		request.PaymentNote,
		request.CancelledAt,
		request.CancelReason,
		request.Active,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", request.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves an active request by ID. Returns nil for unknown or
// soft-deleted ids.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.ReimbursementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests WHERE id = ? AND active = 1`

	request, err := scanRequest(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return request, nil
}

// Update persists the full mutable state of a request
func (r *RequestRepository) Update(ctx context.Context, request *entity.ReimbursementRequest) error {
	query := `
		UPDATE reimbursement_requests SET
			title = ?, description = ?, category = ?, requested_amount = ?,
			approved_amount = ?, expense_date = ?, status = ?, approver_id = ?,
			approved_at = ?, approval_note = ?, payer_id = ?, paid_at = ?,
			payment_note = ?, cancelled_at = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		request.Title,
		request.Description,
		request.Category.String(),
		request.RequestedAmount,
		request.ApprovedAmount,
		request.ExpenseDate,
		request.Status.String(),
		request.ApproverID,
		request.ApprovedAt,
		request.ApprovalNote,
		request.PayerID,
		request.PaidAt,
		request.PaymentNote,
		request.CancelledAt,
		request.CancelReason,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.String("id", request.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s not found for update", request.ID)
	}

	return nil
}

// Deactivate soft-deletes a request
func (r *RequestRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE reimbursement_requests SET active = 0, updated_at = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to deactivate request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate request: %w", err)
	}

	return nil
}

// List retrieves active requests matching the filter, newest first, plus the
// total match count for pagination.
func (r *RequestRepository) List(ctx context.Context, filter port.RequestFilter) ([]*entity.ReimbursementRequest, int, error) {
	conditions := []string{"active = 1"}
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category.String())
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "expense_date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "expense_date <= ?")
		args = append(args, *filter.DateTo)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM reimbursement_requests WHERE ` + where
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count requests", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query := `SELECT ` + requestColumns + ` FROM reimbursement_requests WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ReimbursementRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.ReimbursementRequest, error) {
	var request entity.ReimbursementRequest
	var rawCategory, rawStatus string
	var approvedAmount sql.NullFloat64
	var approvedAt, paidAt, cancelledAt sql.NullTime

	err := row.Scan(
		&request.ID,
		&request.EmployeeID,
		&request.Title,
		&request.Description,
		&rawCategory,
		&request.RequestedAmount,
		&approvedAmount,
		&request.ExpenseDate,
		&rawStatus,
		&request.ApproverID,
		&approvedAt,
		&request.ApprovalNote,
		&request.PayerID,
		&paidAt,
		&request.PaymentNote,
		&cancelledAt,
		&request.CancelReason,
		&request.Active,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if request.Category, err = entity.ParseCategory(rawCategory); err != nil {
		return nil, err
	}
	if request.Status, err = entity.ParseStatus(rawStatus); err != nil {
		return nil, err
	}

	if approvedAmount.Valid {
		request.ApprovedAmount = &approvedAmount.Float64
	}
	if approvedAt.Valid {
		request.ApprovedAt = &approvedAt.Time
	}
	if paidAt.Valid {
		request.PaidAt = &paidAt.Time
	}
	if cancelledAt.Valid {
		request.CancelledAt = &cancelledAt.Time
	}

	return &request, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
