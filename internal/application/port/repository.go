package port

import (
	"context"
	"time"

	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// Pagination limits applied to every listing.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// RequestFilter narrows and paginates request listings. Zero values mean
// "no constraint" for the optional fields.
type RequestFilter struct {
	Status     entity.Status
	Category   entity.Category
	EmployeeID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// Normalize clamps pagination to the configured bounds: page numbers below 1
// become 1, page sizes default to DefaultPageSize and cap at MaxPageSize.
func (f *RequestFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the normalized page.
func (f *RequestFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// RequestRepository persists reimbursement requests. GetByID returns nil
// (no error) for unknown or soft-deleted ids; callers translate that into
// a NotFound error.
type RequestRepository interface {
	Create(ctx context.Context, request *entity.ReimbursementRequest) error
	GetByID(ctx context.Context, id string) (*entity.ReimbursementRequest, error)
	Update(ctx context.Context, request *entity.ReimbursementRequest) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter RequestFilter) ([]*entity.ReimbursementRequest, int, error)
}

// AttachmentRepository persists request attachments.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	GetByID(ctx context.Context, id int64) (*entity.Attachment, error)
	ListByRequestID(ctx context.Context, requestID string) ([]*entity.Attachment, error)
	CountByRequestID(ctx context.Context, requestID string) (int, error)
	Deactivate(ctx context.Context, id int64) error
}

// HistoryRepository persists the append-only status audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.StatusHistoryEntry) error
	ListByRequestID(ctx context.Context, requestID string) ([]*entity.StatusHistoryEntry, error)
}

// EmployeeRepository persists the employee directory.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	Update(ctx context.Context, employee *entity.Employee) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.Employee, int, error)
}

// UserRepository persists authentication users.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// ReportRepository persists generated reports. ClaimNextPending atomically
// moves the oldest PENDING report to PROCESSING so that only one worker
// picks it up.
type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	ClaimNextPending(ctx context.Context) (*entity.Report, error)
	MarkConcluded(ctx context.Context, id, filePath string, concludedAt, expiresAt time.Time) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Report, error)
	Delete(ctx context.Context, id string) error
}

// TransactionManager runs fn inside one database transaction; repositories
// invoked with the derived context join that transaction. fn returning an
// error rolls everything back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
