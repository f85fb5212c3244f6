package http

import (
	"github.com/gin-gonic/gin"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
)

// LoginBody is the JSON body for login
type LoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterBody is the JSON body for user registration
type RegisterBody struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var body LoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, result)
}

// Register handles POST /api/v1/auth/register (admin only)
func (h *Handlers) Register(c *gin.Context) {
	var body RegisterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, apperrors.NewValidation("body", "invalid JSON body"))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), body.Username, body.Password, body.DisplayName, body.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, user)
}
