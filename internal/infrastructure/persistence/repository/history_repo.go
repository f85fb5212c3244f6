package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// HistoryRepository implements port.HistoryRepository. The table is
// append-only: rows are inserted in the same transaction as the transition
// they record and never updated or deleted.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit-trail entry
func (r *HistoryRepository) Create(ctx context.Context, entry *entity.StatusHistoryEntry) error {
	query := `
		INSERT INTO status_history (
			request_id, previous_status, new_status, changed_at,
			actor_id, actor_name, note
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.RequestID,
		entry.PreviousStatus.String(),
		entry.NewStatus.String(),
		entry.ChangedAt,
		entry.ActorID,
		entry.ActorName,
		entry.Note,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.String("request_id", entry.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByRequestID retrieves the audit trail of a request, most recent first
func (r *HistoryRepository) ListByRequestID(ctx context.Context, requestID string) ([]*entity.StatusHistoryEntry, error) {
	query := `
		SELECT id, request_id, previous_status, new_status, changed_at,
			actor_id, actor_name, note
		FROM status_history
		WHERE request_id = ?
		ORDER BY changed_at DESC, id DESC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.StatusHistoryEntry
	for rows.Next() {
		var entry entity.StatusHistoryEntry
		var rawPrevious, rawNew string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&rawPrevious,
			&rawNew,
			&entry.ChangedAt,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Note,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if entry.PreviousStatus, err = entity.ParseStatus(rawPrevious); err != nil {
			return nil, err
		}
		if entry.NewStatus, err = entity.ParseStatus(rawNew); err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
