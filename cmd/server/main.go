package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/config"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/persistence/repository"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/persistence/sqlite"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/storage"
	"github.com/expensedesk/reimbursement-backoffice/internal/infrastructure/worker"
	httpserver "github.com/expensedesk/reimbursement-backoffice/internal/interfaces/http"
	"github.com/expensedesk/reimbursement-backoffice/internal/pdf"
	"github.com/expensedesk/reimbursement-backoffice/internal/report"
	"github.com/expensedesk/reimbursement-backoffice/pkg/database"
	"github.com/expensedesk/reimbursement-backoffice/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// Local .env for development; absent in production
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

	logger.Info("Starting reimbursement back office",
		zap.Int("port", cfg.Server.Port))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(os.DirFS(cfg.Database.MigrationsDir)); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	requestRepo := repository.NewRequestRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	reportRepo := repository.NewReportRepository(db.DB, logger)

	fileStorage := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)
	inspector := pdf.NewInspector(logger)
	excelBuilder := report.NewExcelBuilder(logger)

	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)
	employeeService := service.NewEmployeeService(employeeRepo, logger)
	requestService := service.NewRequestService(
		requestRepo,
		attachmentRepo,
		historyRepo,
		txManager,
		employeeService,
		authService,
		logger,
	)
	attachmentService := service.NewAttachmentService(requestRepo, attachmentRepo, fileStorage, inspector, logger)
	reportService := service.NewReportService(reportRepo, requestRepo, fileStorage, excelBuilder, cfg.Reports.Retention, logger)

	workers := worker.NewManager(logger)
	reportWorkerCfg := worker.DefaultReportWorkerConfig()
	reportWorkerCfg.PollInterval = cfg.Reports.PollInterval
	workers.Register(worker.NewReportWorker(reportWorkerCfg, reportService, logger))
	workers.Register(worker.NewPurgeWorker(worker.PurgeWorkerConfig{Interval: cfg.Reports.PurgeInterval}, reportService, logger))

	handlers := httpserver.NewHandlers(
		requestService,
		attachmentService,
		employeeService,
		reportService,
		authService,
		fileStorage,
		logger,
	)
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server exited with error", zap.Error(err))
	}

	if err := workers.StopAll(); err != nil {
		logger.Error("Failed to stop background workers", zap.Error(err))
	}

	logger.Info("Server exited")
}
