package http

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
)

// maxUploadBytes caps multipart uploads at 20 MB.
const maxUploadBytes = 20 << 20

// AttachFile handles POST /api/v1/requests/:id/attachments (multipart)
func (h *Handlers) AttachFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.logger, apperrors.NewValidation("file", "multipart field 'file' is required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondError(c, h.logger, apperrors.NewValidation("file", "file exceeds the 20 MB upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	attachment, err := h.attachments.Attach(c.Request.Context(), service.AttachFileInput{
		RequestID:        c.Param("id"),
		OriginalFilename: fileHeader.Filename,
		ContentType:      fileHeader.Header.Get("Content-Type"),
		Content:          content,
		Description:      c.PostForm("description"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, toAttachmentResponse(attachment))
}

// ListAttachments handles GET /api/v1/requests/:id/attachments
func (h *Handlers) ListAttachments(c *gin.Context) {
	attachments, err := h.attachments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		out = append(out, toAttachmentResponse(attachment))
	}
	respondOK(c, out)
}

// RemoveAttachment handles DELETE /api/v1/requests/:id/attachments/:attachmentID
func (h *Handlers) RemoveAttachment(c *gin.Context) {
	attachmentID, err := strconv.ParseInt(c.Param("attachmentID"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperrors.NewValidation("attachment_id", "invalid attachment id"))
		return
	}

	if err := h.attachments.Remove(c.Request.Context(), c.Param("id"), attachmentID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, gin.H{"deleted": true})
}
