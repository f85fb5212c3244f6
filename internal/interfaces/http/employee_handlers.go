package http

import (
	"github.com/gin-gonic/gin"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
)

// EmployeeBody is the JSON body for directory writes
type EmployeeBody struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Email              string `json:"email"`
	Department         string `json:"department"`
}

// ListEmployeesQuery holds the query parameters of the employee listing
type ListEmployeesQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// EmployeePage is one page of directory entries
type EmployeePage struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalItems int         `json:"total_items"`
}

func (b EmployeeBody) toInput() service.EmployeeInput {
	return service.EmployeeInput{
		Name:               b.Name,
		RegistrationNumber: b.RegistrationNumber,
		Email:              b.Email,
		Department:         b.Department,
	}
}

// CreateEmployee handles POST /api/v1/employees (admin only)
func (h *Handlers) CreateEmployee(c *gin.Context) {
	var body EmployeeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	employee, err := h.employees.Create(c.Request.Context(), body.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, employee)
}

// GetEmployee handles GET /api/v1/employees/:id
func (h *Handlers) GetEmployee(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, employee)
}

// UpdateEmployee handles PUT /api/v1/employees/:id (admin only)
func (h *Handlers) UpdateEmployee(c *gin.Context) {
	var body EmployeeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), body.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, employee)
}

// DeleteEmployee handles DELETE /api/v1/employees/:id (admin only)
func (h *Handlers) DeleteEmployee(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}

// ListEmployees handles GET /api/v1/employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	var query ListEmployeesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("query", "invalid query parameters"))
		return
	}

	// Mirror the service clamping so the echoed paging matches the data.
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = port.DefaultPageSize
	}
	if query.PageSize > port.MaxPageSize {
		query.PageSize = port.MaxPageSize
	}

	employees, total, err := h.employees.List(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, EmployeePage{
		Items:      employees,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalItems: total,
	})
}
