package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// RequestReportBody is the JSON body for requesting a report
type RequestReportBody struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	Category   string `json:"category"`
	EmployeeID string `json:"employee_id"`
}

// RequestReport handles POST /api/v1/reports
func (h *Handlers) RequestReport(c *gin.Context) {
	var body RequestReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}
	if body.Type == "" {
		body.Type = entity.ReportTypeRequestsExcel
	}

	filter := port.RequestFilter{
		Status:     entity.Status(body.Status),
		Category:   entity.Category(body.Category),
		EmployeeID: body.EmployeeID,
	}
	if body.Status != "" && !filter.Status.IsValid() {
		respondError(c, h.logger, apperrors.NewValidation("status", "unknown status"))
		return
	}
	if body.Category != "" && !filter.Category.IsValid() {
		respondError(c, h.logger, apperrors.NewValidation("category", "unknown category"))
		return
	}

	report, err := h.reports.Request(c.Request.Context(), body.Type, filter, actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, toReportResponse(report))
}

// GetReport handles GET /api/v1/reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, toReportResponse(report))
}

// DownloadReport handles GET /api/v1/reports/:id/download
func (h *Handlers) DownloadReport(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if report.Status != entity.ReportStatusConcluded || report.FilePath == "" {
		respondError(c, h.logger, apperrors.NewInvalidTransition("download", report.Status))
		return
	}

	absolutePath, err := h.storage.AbsolutePath(report.FilePath)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.ID+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(absolutePath)
}

// PurgeExpiredReports handles POST /api/v1/reports/purge-expired (admin only)
func (h *Handlers) PurgeExpiredReports(c *gin.Context) {
	purged, err := h.reports.PurgeExpired(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"purged": purged}})
}
