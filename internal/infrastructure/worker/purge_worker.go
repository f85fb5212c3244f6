package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
)

// PurgeWorkerConfig holds configuration for the purge worker
type PurgeWorkerConfig struct {
	Interval time.Duration
}

// DefaultPurgeWorkerConfig returns default configuration
func DefaultPurgeWorkerConfig() PurgeWorkerConfig {
	return PurgeWorkerConfig{
		Interval: time.Hour,
	}
}

// PurgeWorker periodically removes expired report payloads and rows. The
// purge itself is idempotent, so overlapping runs are harmless.
type PurgeWorker struct {
	config  PurgeWorkerConfig
	reports service.ReportService
	logger  *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

// NewPurgeWorker creates a new purge worker
func NewPurgeWorker(config PurgeWorkerConfig, reports service.ReportService, logger *zap.Logger) *PurgeWorker {
	return &PurgeWorker{
		config:  config,
		reports: reports,
		logger:  logger,
	}
}

// Start begins the periodic purge loop
func (w *PurgeWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("purge worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("PurgeWorker started", zap.Duration("interval", w.config.Interval))

	go w.loop()

	return nil
}

// Stop gracefully terminates the worker
func (w *PurgeWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("PurgeWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *PurgeWorker) Name() string {
	return "PurgeWorker"
}

func (w *PurgeWorker) loop() {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			purged, err := w.reports.PurgeExpired(w.ctx)
			if err != nil {
				w.logger.Error("Failed to purge expired reports", zap.Error(err))
				continue
			}
			if purged > 0 {
				w.logger.Info("Purged expired reports", zap.Int("count", purged))
			}
		}
	}
}
