package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// AttachFileInput carries an uploaded file and its metadata.
type AttachFileInput struct {
	RequestID        string
	OriginalFilename string
	ContentType      string
	Content          []byte
	Description      string
}

// AttachmentService manages the files attached to a reimbursement request.
// Files may be attached only while the request is editable (Draft); the
// stored payload is never physically removed, rows are soft-deleted.
type AttachmentService interface {
	Attach(ctx context.Context, in AttachFileInput) (*entity.Attachment, error)
	List(ctx context.Context, requestID string) ([]*entity.Attachment, error)
	Remove(ctx context.Context, requestID string, attachmentID int64) error
}

type attachmentServiceImpl struct {
	requestRepo    port.RequestRepository
	attachmentRepo port.AttachmentRepository
	storage        port.FileStorage
	inspector      port.AttachmentInspector
	logger         *zap.Logger
}

// NewAttachmentService creates the attachment service. inspector may be nil
// when PDF inspection is disabled.
func NewAttachmentService(
	requestRepo port.RequestRepository,
	attachmentRepo port.AttachmentRepository,
	storage port.FileStorage,
	inspector port.AttachmentInspector,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		requestRepo:    requestRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		inspector:      inspector,
		logger:         logger,
	}
}

// Attach stores the payload and appends an attachment row to the request.
func (s *attachmentServiceImpl) Attach(ctx context.Context, in AttachFileInput) (*entity.Attachment, error) {
	if strings.TrimSpace(in.OriginalFilename) == "" {
		return nil, apperrors.NewValidation("filename", "original filename is required")
	}
	if len(in.Content) == 0 {
		return nil, apperrors.NewValidation("file", "file content is empty")
	}

	request, err := s.requestRepo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request == nil || !request.Active {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, in.RequestID)
	}
	if !request.Editable() {
		return nil, apperrors.NewInvalidTransition("attach_file", request.Status.String())
	}

	storedFilename := uuid.NewString() + strings.ToLower(filepath.Ext(in.OriginalFilename))
	relativePath := filepath.Join(request.ID, storedFilename)

	absolutePath, err := s.storage.Save(relativePath, in.Content)
	if err != nil {
		return nil, fmt.Errorf("store attachment payload: %w", err)
	}

	attachment := &entity.Attachment{
		RequestID:        request.ID,
		StoredFilename:   storedFilename,
		OriginalFilename: in.OriginalFilename,
		ContentType:      in.ContentType,
		SizeBytes:        int64(len(in.Content)),
		StoragePath:      relativePath,
		Description:      in.Description,
		Active:           true,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// Roll the payload back so storage and rows stay in sync.
		if rmErr := s.storage.Remove(relativePath); rmErr != nil {
			s.logger.Error("Failed to remove orphaned attachment payload",
				zap.String("path", relativePath),
				zap.Error(rmErr))
		}
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	s.inspect(attachment, absolutePath)

	s.logger.Info("Attachment added",
		zap.String("request_id", request.ID),
		zap.Int64("attachment_id", attachment.ID),
		zap.String("kind", attachment.Kind()),
		zap.String("size", attachment.HumanSize()))
	return attachment, nil
}

// inspect records PDF metadata for observability. Failures never surface.
func (s *attachmentServiceImpl) inspect(attachment *entity.Attachment, absolutePath string) {
	if s.inspector == nil || !attachment.IsPDF() {
		return
	}
	pages, err := s.inspector.PDFPageCount(absolutePath)
	if err != nil {
		s.logger.Warn("PDF inspection failed",
			zap.Int64("attachment_id", attachment.ID),
			zap.Error(err))
		return
	}
	s.logger.Info("PDF attachment inspected",
		zap.Int64("attachment_id", attachment.ID),
		zap.Int("pages", pages))
}

// List returns the active attachments of a request.
func (s *attachmentServiceImpl) List(ctx context.Context, requestID string) ([]*entity.Attachment, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if request == nil || !request.Active {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}

	attachments, err := s.attachmentRepo.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// Remove soft-deletes an attachment; the payload stays on disk for audit.
// Like Attach it is Draft-only: after submission the evidence set is frozen.
func (s *attachmentServiceImpl) Remove(ctx context.Context, requestID string, attachmentID int64) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if request == nil || !request.Active {
		return fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}
	if !request.Editable() {
		return apperrors.NewInvalidTransition("remove_attachment", request.Status.String())
	}

	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("get attachment: %w", err)
	}
	if attachment == nil || !attachment.Active || attachment.RequestID != requestID {
		return fmt.Errorf("%w: attachment %d", apperrors.ErrNotFound, attachmentID)
	}

	if err := s.attachmentRepo.Deactivate(ctx, attachmentID); err != nil {
		return fmt.Errorf("deactivate attachment: %w", err)
	}

	s.logger.Info("Attachment soft-deleted",
		zap.String("request_id", requestID),
		zap.Int64("attachment_id", attachmentID))
	return nil
}
