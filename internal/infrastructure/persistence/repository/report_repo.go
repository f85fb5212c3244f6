package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// ReportRepository implements port.ReportRepository
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) port.ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `
	id, type, status, filter_json, file_path, error_message,
	requested_by, created_at, concluded_at, expires_at
`

// Create inserts a new report row
func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	query := `
		INSERT INTO reports (
			id, type, status, filter_json, file_path, error_message,
			requested_by, created_at, concluded_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		report.ID,
		report.Type,
		report.Status,
		report.FilterJSON,
		report.FilePath,
		report.ErrorMessage,
		report.RequestedBy,
		report.CreatedAt,
		report.ConcludedAt,
		report.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("Failed to create report", zap.String("id", report.ID), zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	report, err := scanReport(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get report by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// ClaimNextPending moves the oldest PENDING report to PROCESSING and returns
// it. The guarded UPDATE keeps the claim atomic; a lost race moves on to the
// next candidate, so nil means the queue is truly empty.
func (r *ReportRepository) ClaimNextPending(ctx context.Context) (*entity.Report, error) {
	exec := getExecutor(ctx, r.db)

	selectQuery := `SELECT id FROM reports WHERE status = ? ORDER BY created_at ASC LIMIT 1`
	updateQuery := `UPDATE reports SET status = ? WHERE id = ? AND status = ?`

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var id string
		err := exec.QueryRowContext(ctx, selectQuery, entity.ReportStatusPending).Scan(&id)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			r.logger.Error("Failed to find pending report", zap.Error(err))
			return nil, fmt.Errorf("failed to find pending report: %w", err)
		}

		result, err := exec.ExecContext(ctx, updateQuery,
			entity.ReportStatusProcessing, id, entity.ReportStatusPending)
		if err != nil {
			r.logger.Error("Failed to claim report", zap.String("id", id), zap.Error(err))
			return nil, fmt.Errorf("failed to claim report: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			// Another worker took this one; the next SELECT skips it.
			continue
		}

		return r.GetByID(ctx, id)
	}
}

// MarkConcluded finishes a report successfully
func (r *ReportRepository) MarkConcluded(ctx context.Context, id, filePath string, concludedAt, expiresAt time.Time) error {
	query := `
		UPDATE reports SET
			status = ?, file_path = ?, error_message = '', concluded_at = ?, expires_at = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entity.ReportStatusConcluded, filePath, concludedAt, expiresAt, id)
	if err != nil {
		r.logger.Error("Failed to mark report concluded", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark report concluded: %w", err)
	}

	return nil
}

// MarkFailed finishes a report with an error
func (r *ReportRepository) MarkFailed(ctx context.Context, id, errorMessage string) error {
	query := `UPDATE reports SET status = ?, error_message = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entity.ReportStatusError, errorMessage, id)
	if err != nil {
		r.logger.Error("Failed to mark report failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark report failed: %w", err)
	}

	return nil
}

// ListExpired retrieves reports whose retention window has passed
func (r *ReportRepository) ListExpired(ctx context.Context, now time.Time) ([]*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE expires_at IS NOT NULL AND expires_at < ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to list expired reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list expired reports: %w", err)
	}
	defer rows.Close()

	var reports []*entity.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// Delete removes a report row permanently
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reports WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete report", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete report: %w", err)
	}

	return nil
}

func scanReport(row rowScanner) (*entity.Report, error) {
	var report entity.Report
	var concludedAt, expiresAt sql.NullTime

	err := row.Scan(
		&report.ID,
		&report.Type,
		&report.Status,
		&report.FilterJSON,
		&report.FilePath,
		&report.ErrorMessage,
		&report.RequestedBy,
		&report.CreatedAt,
		&concludedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	if concludedAt.Valid {
		report.ConcludedAt = &concludedAt.Time
	}
	if expiresAt.Valid {
		report.ExpiresAt = &expiresAt.Time
	}

	return &report, nil
}

// Verify interface compliance
var _ port.ReportRepository = (*ReportRepository)(nil)
