package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
)

// ReportWorkerConfig holds configuration for the report worker
type ReportWorkerConfig struct {
	PollInterval   time.Duration
	ProcessTimeout time.Duration
}

// DefaultReportWorkerConfig returns default configuration
func DefaultReportWorkerConfig() ReportWorkerConfig {
	return ReportWorkerConfig{
		PollInterval:   5 * time.Second,
		ProcessTimeout: 2 * time.Minute,
	}
}

// ReportWorker drains the report queue in the background. Each tick claims
// pending reports until the queue is empty, then waits for the next tick.
type ReportWorker struct {
	config  ReportWorkerConfig
	reports service.ReportService
	logger  *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

// NewReportWorker creates a new report worker
func NewReportWorker(config ReportWorkerConfig, reports service.ReportService, logger *zap.Logger) *ReportWorker {
	return &ReportWorker{
		config:  config,
		reports: reports,
		logger:  logger,
	}
}

// Start begins the worker polling loop
func (w *ReportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("report worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("ReportWorker started",
		zap.Duration("poll_interval", w.config.PollInterval))

	go w.pollLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *ReportWorker) Stop() error {
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

	w.logger.Info("ReportWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *ReportWorker) Name() string {
	return "ReportWorker"
}

func (w *ReportWorker) pollLoop() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Poll loop context cancelled")
			return

		case <-ticker.C:
			w.drainQueue()
		}
	}
}

// drainQueue processes pending reports until none remain
func (w *ReportWorker) drainQueue() {
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		processCtx, cancel := context.WithTimeout(w.ctx, w.config.ProcessTimeout)
		worked, err := w.reports.ProcessNext(processCtx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to process report", zap.Error(err))
			return
		}
		if !worked {
			return
		}
	}
}
