package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// Response is the standard JSON envelope
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RequestResponse is a reimbursement request in API responses. The
// capability flags are computed from the current status at the boundary.
type RequestResponse struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	EmployeeName       string     `json:"employee_name,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category"`
	RequestedAmount    float64    `json:"requested_amount"`
	ApprovedAmount     *float64   `json:"approved_amount,omitempty"`
	ExpenseDate        string     `json:"expense_date"`
	Status             string     `json:"status"`
	ApproverID         string     `json:"approver_id,omitempty"`
	ApprovedAt         *string    `json:"approved_at,omitempty"`
	ApprovalNote       string     `json:"approval_note,omitempty"`
	PayerID            string     `json:"payer_id,omitempty"`
	PaidAt             *string    `json:"paid_at,omitempty"`
	PaymentNote        string     `json:"payment_note,omitempty"`
	CancelledAt        *string    `json:"cancelled_at,omitempty"`
	CancelReason       string     `json:"cancel_reason,omitempty"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
	CanEdit            bool       `json:"can_edit"`
	CanCancel          bool       `json:"can_cancel"`
	CanApprove         bool       `json:"can_approve"`
	CanPay             bool       `json:"can_pay"`
}

// AttachmentResponse is an attachment in API responses
type AttachmentResponse struct {
	ID               int64  `json:"id"`
	RequestID        string `json:"request_id"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type,omitempty"`
	Kind             string `json:"kind"`
	SizeBytes        int64  `json:"size_bytes"`
	Size             string `json:"size"`
	Description      string `json:"description,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// HistoryResponse is one audit-trail entry in API responses
type HistoryResponse struct {
	ID             int64  `json:"id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	ChangedAt      string `json:"changed_at"`
	ActorID        string `json:"actor_id"`
	ActorName      string `json:"actor_name,omitempty"`
	Note           string `json:"note,omitempty"`
}

// ReportResponse is a report in API responses
type ReportResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	RequestedBy  string  `json:"requested_by"`
	CreatedAt    string  `json:"created_at"`
	ConcludedAt  *string `json:"concluded_at,omitempty"`
	ExpiresAt    *string `json:"expires_at,omitempty"`
}

func toRequestResponse(request *entity.ReimbursementRequest, employeeName, registrationNumber string) RequestResponse {
	resp := RequestResponse{
		ID:                 request.ID,
		EmployeeID:         request.EmployeeID,
		EmployeeName:       employeeName,
		RegistrationNumber: registrationNumber,
		Title:              request.Title,
		Description:        request.Description,
		Category:           request.Category.String(),
		RequestedAmount:    request.RequestedAmount,
		ApprovedAmount:     request.ApprovedAmount,
		ExpenseDate:        request.ExpenseDate.Format("2006-01-02"),
		Status:             request.Status.String(),
		ApproverID:         request.ApproverID,
		ApprovalNote:       request.ApprovalNote,
		PayerID:            request.PayerID,
		PaymentNote:        request.PaymentNote,
		CancelReason:       request.CancelReason,
		CreatedAt:          request.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          request.UpdatedAt.Format(time.RFC3339),
		CanEdit:            request.Editable(),
		CanCancel:          request.Cancellable(),
		CanApprove:         request.Approvable(),
		CanPay:             request.Payable(),
	}

	resp.ApprovedAt = formatTimePtr(request.ApprovedAt)
	resp.PaidAt = formatTimePtr(request.PaidAt)
	resp.CancelledAt = formatTimePtr(request.CancelledAt)

	return resp
}

func toAttachmentResponse(attachment *entity.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:               attachment.ID,
		RequestID:        attachment.RequestID,
		OriginalFilename: attachment.OriginalFilename,
		ContentType:      attachment.ContentType,
		Kind:             attachment.Kind(),
		SizeBytes:        attachment.SizeBytes,
		Size:             attachment.HumanSize(),
		Description:      attachment.Description,
		CreatedAt:        attachment.CreatedAt.Format(time.RFC3339),
	}
}

func toHistoryResponse(entry *entity.StatusHistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:             entry.ID,
		PreviousStatus: entry.PreviousStatus.String(),
		NewStatus:      entry.NewStatus.String(),
		ChangedAt:      entry.ChangedAt.Format(time.RFC3339),
		ActorID:        entry.ActorID,
		ActorName:      entry.ActorName,
		Note:           entry.Note,
	}
}

func toReportResponse(report *entity.Report) ReportResponse {
	return ReportResponse{
		ID:           report.ID,
		Type:         report.Type,
		Status:       report.Status,
		ErrorMessage: report.ErrorMessage,
		RequestedBy:  report.RequestedBy,
		CreatedAt:    report.CreatedAt.Format(time.RFC3339),
		ConcludedAt:  formatTimePtr(report.ConcludedAt),
		ExpiresAt:    formatTimePtr(report.ExpiresAt),
	}
}

func toDetailResponse(detail *service.RequestDetail) RequestResponse {
	return toRequestResponse(detail.Request, detail.EmployeeName, detail.RegistrationNumber)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// respondError maps service errors onto HTTP status codes: bad input is 400,
// missing identity 401, insufficient role 403, unknown entities 404 and
// guarded lifecycle violations 409. Everything else is a 500 with a generic
// message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Fields:  verr.Fields,
		})
		return
	}

	var ite *apperrors.InvalidTransitionError
	if errors.As(err, &ite) {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   ite.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	default:
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}
