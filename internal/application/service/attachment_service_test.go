package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

func newTestAttachmentService(t *testing.T) (AttachmentService, RequestService, *fakeStorage, *fakeAttachmentRepo) {
	t.Helper()
	requestRepo := newFakeRequestRepo()
	attachmentRepo := newFakeAttachmentRepo()
	storage := newFakeStorage()

	requestSvc := NewRequestService(
		requestRepo,
		attachmentRepo,
		&fakeHistoryRepo{},
		&fakeTxManager{},
		&fakeDirectory{},
		&fakeActors{},
		zap.NewNop(),
	)
	attachmentSvc := NewAttachmentService(requestRepo, attachmentRepo, storage, nil, zap.NewNop())
	return attachmentSvc, requestSvc, storage, attachmentRepo
}

func TestAttachmentService_Attach(t *testing.T) {
	attachmentSvc, requestSvc, storage, attachmentRepo := newTestAttachmentService(t)
	ctx := context.Background()

	request, err := requestSvc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	t.Run("attaches to draft request", func(t *testing.T) {
		attachment, err := attachmentSvc.Attach(ctx, AttachFileInput{
			RequestID:        request.ID,
			OriginalFilename: "receipt.pdf",
			ContentType:      "application/pdf",
			Content:          []byte("%PDF-1.4 fake"),
			Description:      "restaurant receipt",
		})
		require.NoError(t, err)

		assert.NotZero(t, attachment.ID)
		assert.Equal(t, entity.AttachmentKindPDF, attachment.Kind())
		assert.Equal(t, int64(13), attachment.SizeBytes)
		assert.True(t, attachment.Active)
		assert.NotEqual(t, "receipt.pdf", attachment.StoredFilename)
		assert.Contains(t, storage.files, attachment.StoragePath)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := attachmentSvc.Attach(ctx, AttachFileInput{
			RequestID:        request.ID,
			OriginalFilename: "receipt.pdf",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects unknown request", func(t *testing.T) {
		_, err := attachmentSvc.Attach(ctx, AttachFileInput{
			RequestID:        "missing",
			OriginalFilename: "receipt.pdf",
			Content:          []byte("x"),
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("rejects attach outside draft", func(t *testing.T) {
		_, err := requestSvc.Submit(ctx, request.ID, "user-1")
		require.NoError(t, err)

		_, err = attachmentSvc.Attach(ctx, AttachFileInput{
			RequestID:        request.ID,
			OriginalFilename: "late.pdf",
			Content:          []byte("x"),
		})
		assert.True(t, apperrors.IsInvalidTransition(err), "got %v", err)
	})

	t.Run("removes payload when row insert fails", func(t *testing.T) {
		draft, err := requestSvc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		attachmentRepo.createFunc = func(ctx context.Context, a *entity.Attachment) error {
			return assert.AnError
		}
		defer func() { attachmentRepo.createFunc = nil }()

		before := len(storage.files)
		_, err = attachmentSvc.Attach(ctx, AttachFileInput{
			RequestID:        draft.ID,
			OriginalFilename: "receipt.jpg",
			Content:          []byte("jpeg"),
		})
		assert.Error(t, err)
		assert.Len(t, storage.files, before, "orphaned payload was not cleaned up")
	})
}

func TestAttachmentService_ListAndRemove(t *testing.T) {
	attachmentSvc, requestSvc, _, _ := newTestAttachmentService(t)
	ctx := context.Background()

	request, err := requestSvc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	first, err := attachmentSvc.Attach(ctx, AttachFileInput{
		RequestID:        request.ID,
		OriginalFilename: "a.pdf",
		Content:          []byte("a"),
	})
	require.NoError(t, err)
	_, err = attachmentSvc.Attach(ctx, AttachFileInput{
		RequestID:        request.ID,
		OriginalFilename: "b.png",
		Content:          []byte("b"),
	})
	require.NoError(t, err)

	list, err := attachmentSvc.List(ctx, request.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Soft-deleted attachments drop out of the default listing.
	require.NoError(t, attachmentSvc.Remove(ctx, request.ID, first.ID))

	list, err = attachmentSvc.List(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b.png", list[0].OriginalFilename)

	// Removing again reports not found.
	err = attachmentSvc.Remove(ctx, request.ID, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Attachment ids are scoped to their request.
	err = attachmentSvc.Remove(ctx, "other-request", list[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The evidence set freezes at submission: removal follows the same
	// Draft-only rule as attaching.
	_, err = requestSvc.Submit(ctx, request.ID, "user-1")
	require.NoError(t, err)

	err = attachmentSvc.Remove(ctx, request.ID, list[0].ID)
	assert.True(t, apperrors.IsInvalidTransition(err), "got %v", err)

	remaining, err := attachmentSvc.List(ctx, request.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
