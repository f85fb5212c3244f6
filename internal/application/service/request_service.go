package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/workflow"
)

// Field length limits for request input.
const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// CreateRequestInput carries the fields accepted when filing a request.
type CreateRequestInput struct {
	EmployeeID      string
	Title           string
	Description     string
	Category        entity.Category
	RequestedAmount float64
	ExpenseDate     time.Time
}

// UpdateRequestInput carries the fields accepted when editing a draft.
type UpdateRequestInput struct {
	Title           string
	Description     string
	Category        entity.Category
	RequestedAmount float64
	ExpenseDate     time.Time
}

// RequestDetail is a request plus best-effort directory enrichment.
type RequestDetail struct {
	Request            *entity.ReimbursementRequest
	EmployeeName       string
	RegistrationNumber string
}

// RequestSummary is the condensed projection used by list views.
type RequestSummary struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Category           entity.Category `json:"category"`
	RequestedAmount    float64         `json:"requested_amount"`
	ApprovedAmount     *float64        `json:"approved_amount,omitempty"`
	ExpenseDate        time.Time       `json:"expense_date"`
	Status             entity.Status   `json:"status"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name,omitempty"`
	RegistrationNumber string          `json:"registration_number,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	AttachmentCount    int             `json:"attachment_count"`
}

// RequestPage is one page of request summaries.
type RequestPage struct {
	Items      []*RequestSummary `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

// RequestService is the reimbursement-request lifecycle manager. Every
// mutating operation runs as one transaction: guard check, field mutation and
// history row commit together or not at all.
type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*entity.ReimbursementRequest, error)
	Get(ctx context.Context, id string) (*RequestDetail, error)
	Update(ctx context.Context, id string, in UpdateRequestInput) (*entity.ReimbursementRequest, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter port.RequestFilter) (*RequestPage, error)
	ListHistory(ctx context.Context, id string) ([]*entity.StatusHistoryEntry, error)

	Submit(ctx context.Context, id, actorID string) (*entity.ReimbursementRequest, error)
	Approve(ctx context.Context, id string, approvedAmount float64, note, actorID string) (*entity.ReimbursementRequest, error)
	Reject(ctx context.Context, id, note, actorID string) (*entity.ReimbursementRequest, error)
	Pay(ctx context.Context, id, note, actorID string) (*entity.ReimbursementRequest, error)
	Cancel(ctx context.Context, id, reason, actorID string) (*entity.ReimbursementRequest, error)
}

type requestServiceImpl struct {
	requestRepo    port.RequestRepository
	attachmentRepo port.AttachmentRepository
	historyRepo    port.HistoryRepository
	txManager      port.TransactionManager
	directory      port.EmployeeDirectory
	actors         port.ActorDirectory
	logger         *zap.Logger
}

// NewRequestService creates the lifecycle manager.
func NewRequestService(
	requestRepo port.RequestRepository,
	attachmentRepo port.AttachmentRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	directory port.EmployeeDirectory,
	actors port.ActorDirectory,
	logger *zap.Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo:    requestRepo,
		attachmentRepo: attachmentRepo,
		historyRepo:    historyRepo,
		txManager:      txManager,
		directory:      directory,
		actors:         actors,
		logger:         logger,
	}
}

func validateRequestFields(title, description string, category entity.Category, amount float64) error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(title) == "" {
		verr.Add("title", "title is required")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		verr.Add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		verr.Add("description", fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if !category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", category))
	}
	if amount <= 0 {
		verr.Add("requested_amount", "requested amount must be greater than zero")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Create files a new request in Draft on behalf of the owning employee.
func (s *requestServiceImpl) Create(ctx context.Context, in CreateRequestInput) (*entity.ReimbursementRequest, error) {
	if err := validateRequestFields(in.Title, in.Description, in.Category, in.RequestedAmount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.EmployeeID) == "" {
		return nil, apperrors.NewValidation("employee_id", "employee id is required")
	}

	now := time.Now().UTC()
	request := &entity.ReimbursementRequest{
		ID:              uuid.NewString(),
		EmployeeID:      in.EmployeeID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Category:        in.Category,
		RequestedAmount: in.RequestedAmount,
		ExpenseDate:     in.ExpenseDate,
		Status:          entity.StatusDraft,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		s.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("Request created",
		zap.String("request_id", request.ID),
		zap.String("employee_id", request.EmployeeID),
		zap.Float64("requested_amount", request.RequestedAmount))
	return request, nil
}

// Get returns a request with best-effort directory enrichment.
func (s *requestServiceImpl) Get(ctx context.Context, id string) (*RequestDetail, error) {
	request, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &RequestDetail{Request: request}
	if entry, err := s.directory.Lookup(ctx, request.EmployeeID); err != nil {
		s.logger.Warn("Employee lookup failed, proceeding without enrichment",
			zap.String("employee_id", request.EmployeeID),
			zap.Error(err))
	} else if entry != nil {
		detail.EmployeeName = entry.Name
		detail.RegistrationNumber = entry.RegistrationNumber
	}
	return detail, nil
}

// Update edits a Draft request in place. Status, lifecycle metadata,
// attachments and history are never touched here.
func (s *requestServiceImpl) Update(ctx context.Context, id string, in UpdateRequestInput) (*entity.ReimbursementRequest, error) {
	if err := validateRequestFields(in.Title, in.Description, in.Category, in.RequestedAmount); err != nil {
		return nil, err
	}

	var updated *entity.ReimbursementRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.getExisting(txCtx, id)
		if err != nil {
			return err
		}
		if !request.Editable() {
			return apperrors.NewInvalidTransition("update", request.Status.String())
		}

		request.Title = strings.TrimSpace(in.Title)
		request.Description = in.Description
		request.Category = in.Category
		request.RequestedAmount = in.RequestedAmount
		request.ExpenseDate = in.ExpenseDate
		request.UpdatedAt = time.Now().UTC()

		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Request updated", zap.String("request_id", id))
	return updated, nil
}

// Delete soft-deletes a request; the row and its audit trail stay in place.
func (s *requestServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.getExisting(ctx, id); err != nil {
		return err
	}
	if err := s.requestRepo.Deactivate(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate request: %w", err)
	}
	s.logger.Info("Request soft-deleted", zap.String("request_id", id))
	return nil
}

// Submit moves Draft to PendingFinancialApproval.
func (s *requestServiceImpl) Submit(ctx context.Context, id, actorID string) (*entity.ReimbursementRequest, error) {
	return s.transition(ctx, id, workflow.TriggerSubmit, actorID, "", nil)
}

// Approve moves PendingFinancialApproval to Approved, setting the approved
// amount exactly once.
func (s *requestServiceImpl) Approve(ctx context.Context, id string, approvedAmount float64, note, actorID string) (*entity.ReimbursementRequest, error) {
	if approvedAmount <= 0 {
		return nil, apperrors.NewValidation("approved_amount", "approved amount must be greater than zero")
	}
	return s.transition(ctx, id, workflow.TriggerApprove, actorID, note, func(r *entity.ReimbursementRequest, now time.Time) {
		amount := approvedAmount
		r.ApprovedAmount = &amount
		r.ApproverID = actorID
		r.ApprovedAt = &now
		r.ApprovalNote = note
	})
}

// Reject moves PendingFinancialApproval to Rejected. The rejection note is
// stored in the approval-note field.
func (s *requestServiceImpl) Reject(ctx context.Context, id, note, actorID string) (*entity.ReimbursementRequest, error) {
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.NewValidation("note", "rejection note is required")
	}
	return s.transition(ctx, id, workflow.TriggerReject, actorID, note, func(r *entity.ReimbursementRequest, now time.Time) {
		r.ApproverID = actorID
		r.ApprovedAt = &now
		r.ApprovalNote = note
	})
}

// Pay moves Approved to Paid.
func (s *requestServiceImpl) Pay(ctx context.Context, id, note, actorID string) (*entity.ReimbursementRequest, error) {
	return s.transition(ctx, id, workflow.TriggerPay, actorID, note, func(r *entity.ReimbursementRequest, now time.Time) {
		r.PayerID = actorID
		r.PaidAt = &now
		r.PaymentNote = note
	})
}

// Cancel moves Draft or PendingFinancialApproval to Cancelled.
func (s *requestServiceImpl) Cancel(ctx context.Context, id, reason, actorID string) (*entity.ReimbursementRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidation("reason", "cancellation reason is required")
	}
	return s.transition(ctx, id, workflow.TriggerCancel, actorID, reason, func(r *entity.ReimbursementRequest, now time.Time) {
		r.CancelledAt = &now
		r.CancelReason = reason
	})
}

// transition executes one lifecycle transition atomically: re-read the
// request, check the trigger against its current status, apply metadata and
// append exactly one history row. A concurrent writer that loses the race
// re-reads the post-transition status and fails the guard here.
func (s *requestServiceImpl) transition(
	ctx context.Context,
	id string,
	trigger workflow.Trigger,
	actorID, note string,
	apply func(r *entity.ReimbursementRequest, now time.Time),
) (*entity.ReimbursementRequest, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("%w: operation %s requires an acting user", apperrors.ErrUnauthorized, trigger)
	}

	// Best-effort display name for the audit trail; never aborts the
	// transition.
	actorName := ""
	if s.actors != nil {
		name, err := s.actors.DisplayName(ctx, actorID)
		if err != nil {
			s.logger.Warn("Actor lookup failed, recording history without display name",
				zap.String("actor_id", actorID),
				zap.Error(err))
		} else {
			actorName = name
		}
	}

	var updated *entity.ReimbursementRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.getExisting(txCtx, id)
		if err != nil {
			return err
		}

		machine, err := workflow.ForStatus(workflow.State(request.Status))
		if err != nil {
			return err
		}
		if !machine.CanFire(trigger) {
			return apperrors.NewInvalidTransition(strings.ToLower(trigger.String()), request.Status.String())
		}
		if err := machine.Fire(trigger); err != nil {
			return err
		}

		now := time.Now().UTC()
		previous := request.Status
		request.Status = entity.Status(machine.State())
		request.UpdatedAt = now
		if apply != nil {
			apply(request, now)
		}

		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		history := &entity.StatusHistoryEntry{
			RequestID:      request.ID,
			PreviousStatus: previous,
			NewStatus:      request.Status,
			ChangedAt:      now,
			ActorID:        actorID,
			ActorName:      actorName,
			Note:           note,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history entry: %w", err)
		}

		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Request transitioned",
		zap.String("request_id", id),
		zap.String("trigger", trigger.String()),
		zap.String("status", updated.Status.String()),
		zap.String("actor_id", actorID))
	return updated, nil
}

// List returns one page of summaries matching the filter, with attachment
// counts and best-effort employee enrichment.
func (s *requestServiceImpl) List(ctx context.Context, filter port.RequestFilter) (*RequestPage, error) {
	filter.Normalize()

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	// One directory lookup per distinct employee on the page.
	entries := make(map[string]*port.DirectoryEntry)
	for _, request := range requests {
		if _, seen := entries[request.EmployeeID]; seen {
			continue
		}
		entry, err := s.directory.Lookup(ctx, request.EmployeeID)
		if err != nil {
			s.logger.Warn("Employee lookup failed during listing",
				zap.String("employee_id", request.EmployeeID),
				zap.Error(err))
			entry = nil
		}
		entries[request.EmployeeID] = entry
	}

	items := make([]*RequestSummary, 0, len(requests))
	for _, request := range requests {
		count, err := s.attachmentRepo.CountByRequestID(ctx, request.ID)
		if err != nil {
			return nil, fmt.Errorf("count attachments: %w", err)
		}

		summary := &RequestSummary{
			ID:              request.ID,
			Title:           request.Title,
			Category:        request.Category,
			RequestedAmount: request.RequestedAmount,
			ApprovedAmount:  request.ApprovedAmount,
			ExpenseDate:     request.ExpenseDate,
			Status:          request.Status,
			EmployeeID:      request.EmployeeID,
			CreatedAt:       request.CreatedAt,
			AttachmentCount: count,
		}
		if entry := entries[request.EmployeeID]; entry != nil {
			summary.EmployeeName = entry.Name
			summary.RegistrationNumber = entry.RegistrationNumber
		}
		items = append(items, summary)
	}

	totalPages := total / filter.PageSize
	if total%filter.PageSize != 0 {
		totalPages++
	}

	return &RequestPage{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// ListHistory returns the audit trail ordered by change time descending.
func (s *requestServiceImpl) ListHistory(ctx context.Context, id string) ([]*entity.StatusHistoryEntry, error) {
	if _, err := s.getExisting(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.historyRepo.ListByRequestID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}

func (s *requestServiceImpl) getExisting(ctx context.Context, id string) (*entity.ReimbursementRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request == nil || !request.Active {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, id)
	}
	return request, nil
}
