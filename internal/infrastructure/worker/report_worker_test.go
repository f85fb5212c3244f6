package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

type stubReportService struct {
	mu        sync.Mutex
	remaining int
	processed int
}

func (s *stubReportService) Request(ctx context.Context, reportType string, filter port.RequestFilter, requestedBy string) (*entity.Report, error) {
	return nil, nil
}

func (s *stubReportService) Get(ctx context.Context, id string) (*entity.Report, error) {
	return nil, nil
}

func (s *stubReportService) ProcessNext(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining == 0 {
		return false, nil
	}
	s.remaining--
	s.processed++
	return true, nil
}

func (s *stubReportService) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubReportService) processedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

func TestReportWorker_DrainsQueue(t *testing.T) {
	stub := &stubReportService{remaining: 3}
	w := NewReportWorker(ReportWorkerConfig{
		PollInterval:   10 * time.Millisecond,
		ProcessTimeout: time.Second,
	}, stub, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	assert.Eventually(t, func() bool {
		return stub.processedCount() == 3
	}, time.Second, 10*time.Millisecond)
}

func TestReportWorker_StartTwiceFails(t *testing.T) {
	w := NewReportWorker(DefaultReportWorkerConfig(), &stubReportService{}, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())

	// Stopping twice is harmless.
	assert.NoError(t, w.Stop())
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(zap.NewNop())
	stub := &stubReportService{remaining: 1}
	m.Register(NewReportWorker(ReportWorkerConfig{
		PollInterval:   10 * time.Millisecond,
		ProcessTimeout: time.Second,
	}, stub, zap.NewNop()))

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	assert.Eventually(t, func() bool {
		return stub.processedCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
}
