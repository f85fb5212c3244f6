// Command purge-reports removes expired report payloads and rows once and
// exits. Useful for cron setups where the in-process purge worker is
// disabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/config"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/persistence/repository"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/storage"
	"github.com/expensedesk/reimbursement-backoffice/pkg/database"
	"github.com/expensedesk/reimbursement-backoffice/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	timeout := flag.Duration("timeout", time.Minute, "maximum time to spend purging")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	reportRepo := repository.NewReportRepository(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	fileStorage := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)

	reports := service.NewReportService(reportRepo, requestRepo, fileStorage, nil, cfg.Reports.Retention, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	purged, err := reports.PurgeExpired(ctx)
	if err != nil {
		logger.Fatal("Purge failed", zap.Error(err))
	}

	logger.Info("Purge completed", zap.Int("purged", purged))
}
