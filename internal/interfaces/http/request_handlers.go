package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// CreateRequestBody is the JSON body for filing a request
type CreateRequestBody struct {
	EmployeeID      string  `json:"employee_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	RequestedAmount float64 `json:"requested_amount"`
	ExpenseDate     string  `json:"expense_date"`
}

// UpdateRequestBody is the JSON body for editing a draft
type UpdateRequestBody struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	RequestedAmount float64 `json:"requested_amount"`
	ExpenseDate     string  `json:"expense_date"`
}

// ApproveBody is the JSON body for the approve operation
type ApproveBody struct {
	ApprovedAmount float64 `json:"approved_amount"`
	Note           string  `json:"note"`
}

// NoteBody is the JSON body for reject, pay and cancel operations
type NoteBody struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

// ListRequestsQuery holds the query parameters of the list endpoint
type ListRequestsQuery struct {
	Status     string `form:"status"`
	Category   string `form:"category"`
	EmployeeID string `form:"employee_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreateRequest handles POST /api/v1/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	expenseDate, err := parseDate(body.ExpenseDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	request, err := h.requests.Create(c.Request.Context(), service.CreateRequestInput{
		EmployeeID:      body.EmployeeID,
		Title:           body.Title,
		Description:     body.Description,
		Category:        entity.Category(body.Category),
		RequestedAmount: body.RequestedAmount,
		ExpenseDate:     expenseDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, toRequestResponse(request, "", ""))
}

// GetRequest handles GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	detail, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toDetailResponse(detail))
}

// UpdateRequest handles PUT /api/v1/requests/:id
func (h *Handlers) UpdateRequest(c *gin.Context) {
	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	expenseDate, err := parseDate(body.ExpenseDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	request, err := h.requests.Update(c.Request.Context(), c.Param("id"), service.UpdateRequestInput{
		Title:           body.Title,
		Description:     body.Description,
		Category:        entity.Category(body.Category),
		RequestedAmount: body.RequestedAmount,
		ExpenseDate:     expenseDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

// DeleteRequest handles DELETE /api/v1/requests/:id
func (h *Handlers) DeleteRequest(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}

// ListRequests handles GET /api/v1/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	var query ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("query", "invalid query parameters"))
		return
	}

	filter := port.RequestFilter{
		Status:     entity.Status(query.Status),
		Category:   entity.Category(query.Category),
		EmployeeID: query.EmployeeID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Status != "" && !filter.Status.IsValid() {
		respondError(c, h.logger, apperrors.NewValidation("status", "unknown status"))
		return
	}
	if query.Category != "" && !filter.Category.IsValid() {
		respondError(c, h.logger, apperrors.NewValidation("category", "unknown category"))
		return
	}
	if query.DateFrom != "" {
		from, err := time.Parse(dateLayout, query.DateFrom)
		if err != nil {
			respondError(c, h.logger, apperrors.NewValidation("date_from", "expected YYYY-MM-DD"))
			return
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := time.Parse(dateLayout, query.DateTo)
		if err != nil {
			respondError(c, h.logger, apperrors.NewValidation("date_to", "expected YYYY-MM-DD"))
			return
		}
		filter.DateTo = &to
	}

	page, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, page)
}

// ListHistory handles GET /api/v1/requests/:id/history
func (h *Handlers) ListHistory(c *gin.Context) {
	entries, err := h.requests.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toHistoryResponse(entry))
	}
	respondOK(c, out)
}

// SubmitRequest handles POST /api/v1/requests/:id/submit
func (h *Handlers) SubmitRequest(c *gin.Context) {
	request, err := h.requests.Submit(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

// ApproveRequest handles POST /api/v1/requests/:id/approve
func (h *Handlers) ApproveRequest(c *gin.Context) {
	var body ApproveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	request, err := h.requests.Approve(c.Request.Context(), c.Param("id"), body.ApprovedAmount, body.Note, actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

// RejectRequest handles POST /api/v1/requests/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	var body NoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	request, err := h.requests.Reject(c.Request.Context(), c.Param("id"), body.Note, actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

// PayRequest handles POST /api/v1/requests/:id/pay
func (h *Handlers) PayRequest(c *gin.Context) {
	var body NoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		body = NoteBody{}
	}

	request, err := h.requests.Pay(c.Request.Context(), c.Param("id"), body.Note, actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

// CancelRequest handles POST /api/v1/requests/:id/cancel
func (h *Handlers) CancelRequest(c *gin.Context) {
	var body NoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	request, err := h.requests.Cancel(c.Request.Context(), c.Param("id"), body.Reason, actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toRequestResponse(request, "", ""))
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperrors.NewValidation("expense_date", "expense date is required")
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("expense_date", "expected YYYY-MM-DD")
	}
	return parsed, nil
}
