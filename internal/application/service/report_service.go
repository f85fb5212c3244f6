package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// ReportBuilder renders a set of requests into an export payload.
type ReportBuilder interface {
	BuildRequestsExcel(ctx context.Context, requests []*entity.ReimbursementRequest) ([]byte, error)
}

// ReportService owns the report lifecycle: PENDING on request, PROCESSING
// while the worker holds it, CONCLUDED or ERROR when done. Concluded reports
// carry an expiry; PurgeExpired removes payload and row and is safe to call
// repeatedly.
type ReportService interface {
	Request(ctx context.Context, reportType string, filter port.RequestFilter, requestedBy string) (*entity.Report, error)
	Get(ctx context.Context, id string) (*entity.Report, error)
	ProcessNext(ctx context.Context) (bool, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type reportServiceImpl struct {
	reportRepo  port.ReportRepository
	requestRepo port.RequestRepository
	storage     port.FileStorage
	builder     ReportBuilder
	retention   time.Duration
	logger      *zap.Logger
}

// NewReportService creates the report service.
func NewReportService(
	reportRepo port.ReportRepository,
	requestRepo port.RequestRepository,
	storage port.FileStorage,
	builder ReportBuilder,
	retention time.Duration,
	logger *zap.Logger,
) ReportService {
	return &reportServiceImpl{
		reportRepo:  reportRepo,
		requestRepo: requestRepo,
		storage:     storage,
		builder:     builder,
		retention:   retention,
		logger:      logger,
	}
}

// Request enqueues a new report in PENDING.
func (s *reportServiceImpl) Request(ctx context.Context, reportType string, filter port.RequestFilter, requestedBy string) (*entity.Report, error) {
	if reportType != entity.ReportTypeRequestsExcel {
		return nil, apperrors.NewValidation("type", fmt.Sprintf("unknown report type %q", reportType))
	}
	if requestedBy == "" {
		return nil, fmt.Errorf("%w: report request requires an acting user", apperrors.ErrUnauthorized)
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshal report filter: %w", err)
	}

	report := &entity.Report{
		ID:          uuid.NewString(),
		Type:        reportType,
		Status:      entity.ReportStatusPending,
		FilterJSON:  string(filterJSON),
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.logger.Info("Report requested",
		zap.String("report_id", report.ID),
		zap.String("type", report.Type),
		zap.String("requested_by", requestedBy))
	return report, nil
}

// Get returns a report by id.
func (s *reportServiceImpl) Get(ctx context.Context, id string) (*entity.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %s", apperrors.ErrNotFound, id)
	}
	return report, nil
}

// ProcessNext claims the oldest pending report and generates it. Returns
// false when the queue is empty.
func (s *reportServiceImpl) ProcessNext(ctx context.Context) (bool, error) {
	report, err := s.reportRepo.ClaimNextPending(ctx)
	if err != nil {
		return false, fmt.Errorf("claim pending report: %w", err)
	}
	if report == nil {
		return false, nil
	}

	s.logger.Info("Processing report", zap.String("report_id", report.ID))

	if err := s.generate(ctx, report); err != nil {
		s.logger.Error("Report generation failed",
			zap.String("report_id", report.ID),
			zap.Error(err))
		if markErr := s.reportRepo.MarkFailed(ctx, report.ID, err.Error()); markErr != nil {
			return true, fmt.Errorf("mark report failed: %w", markErr)
		}
		return true, nil
	}
	return true, nil
}

func (s *reportServiceImpl) generate(ctx context.Context, report *entity.Report) error {
	var filter port.RequestFilter
	if report.FilterJSON != "" {
		if err := json.Unmarshal([]byte(report.FilterJSON), &filter); err != nil {
			return fmt.Errorf("unmarshal report filter: %w", err)
		}
	}
	// Export everything matching the filter, page by page.
	filter.Page = 1
	filter.PageSize = port.MaxPageSize

	var all []*entity.ReimbursementRequest
	for {
		page, _, err := s.requestRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list requests: %w", err)
		}
		all = append(all, page...)
		if len(page) < filter.PageSize {
			break
		}
		filter.Page++
	}

	payload, err := s.builder.BuildRequestsExcel(ctx, all)
	if err != nil {
		return fmt.Errorf("build excel: %w", err)
	}

	relativePath := fmt.Sprintf("reports/%s.xlsx", report.ID)
	if _, err := s.storage.Save(relativePath, payload); err != nil {
		return fmt.Errorf("store report payload: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.retention)
	if err := s.reportRepo.MarkConcluded(ctx, report.ID, relativePath, now, expiresAt); err != nil {
		return fmt.Errorf("mark report concluded: %w", err)
	}

	s.logger.Info("Report concluded",
		zap.String("report_id", report.ID),
		zap.Int("request_count", len(all)),
		zap.Time("expires_at", expiresAt))
	return nil
}

// PurgeExpired removes expired report payloads and rows. Idempotent: a second
// run over the same window finds nothing left to remove.
func (s *reportServiceImpl) PurgeExpired(ctx context.Context) (int, error) {
	expired, err := s.reportRepo.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list expired reports: %w", err)
	}

	purged := 0
	for _, report := range expired {
		if report.FilePath != "" {
			if err := s.storage.Remove(report.FilePath); err != nil {
				s.logger.Warn("Failed to remove report payload, removing row anyway",
					zap.String("report_id", report.ID),
					zap.Error(err))
			}
		}
		if err := s.reportRepo.Delete(ctx, report.ID); err != nil {
			return purged, fmt.Errorf("delete report %s: %w", report.ID, err)
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info("Expired reports purged", zap.Int("count", purged))
	}
	return purged, nil
}
