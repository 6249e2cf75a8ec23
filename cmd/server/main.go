package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/service"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/config"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/infrastructure/persistence/repository"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/shegerlabs/accreditationadmin-sub000/internal/interfaces/http"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/notification"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/reporting"
	"github.com/shegerlabs/accreditationadmin-sub000/pkg/database"
	"github.com/shegerlabs/accreditationadmin-sub000/pkg/utils"
)

func main() {
	// Load .env before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting accreditation workflow service",
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
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	participantRepo := repository.NewParticipantRepository(db.DB, logger)
	stepRepo := repository.NewStepRepository(db.DB, logger)
	approvalRepo := repository.NewApprovalRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	txManager := sqlite.NewDB(db.DB, logger)

	// Outbound mail
	mailer := notification.NewMailer(notification.Config{
		GatewayURL: cfg.Notification.GatewayURL,
		APIKey:     cfg.Notification.APIKey,
		FromName:   cfg.Notification.FromName,
		FromEmail:  cfg.Notification.FromEmail,
		Timeout:    cfg.Notification.Timeout,
	}, logger)

	svcLogger := utils.NewSugarAdapter(logger)
	notifier := service.NewNotificationService(mailer, cfg.Notification.FromName, cfg.Notification.Timeout, svcLogger)

	// Workflow engine
	engine := service.NewEngine(
		participantRepo,
		stepRepo,
		approvalRepo,
		userRepo,
		txManager,
		notifier,
		svcLogger,
	)

	auditService := service.NewAuditService(participantRepo, approvalRepo, stepRepo, workflowRepo, svcLogger)

	exporter, err := reporting.NewExporter(cfg.Report.OutputDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report exporter", zap.Error(err))
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, auditService, exporter, svcLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
