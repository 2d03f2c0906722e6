package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hukumku/consult-gateway/internal/api"
	"github.com/hukumku/consult-gateway/internal/api/catalog"
	consultationapi "github.com/hukumku/consult-gateway/internal/api/consultation"
	"github.com/hukumku/consult-gateway/internal/config"
	"github.com/hukumku/consult-gateway/internal/integration/consult"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
	"github.com/hukumku/consult-gateway/internal/pkg/validator"
	"github.com/hukumku/consult-gateway/internal/repository"
	"github.com/hukumku/consult-gateway/internal/telegram"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize consultation backend connector
	connector := setupConnector(cfg, logger)

	// Initialize the per-user session registry
	registry := orchestrator.NewRegistry(connector, logger, cfg.SessionTTL, cfg.SessionCleanupInterval)
	logger.Info("Session registry initialized",
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	// Setup API handlers
	consultationHandler := consultationapi.NewHandler(registry, validator.NewValidator())
	catalogHandler := catalog.NewHandler()
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(consultationHandler, catalogHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	// Setup database connection for the chat state store
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	chatStateRepo := repository.NewChatStateRepository(db)
	logger.Info("Repositories initialized")

	// Initialize consultation backend connector and session registry
	connector := setupConnector(cfg, logger)
	registry := orchestrator.NewRegistry(connector, logger, cfg.SessionTTL, cfg.SessionCleanupInterval)

	// Initialize Telegram bot
	bot, err := telegram.NewBot(&cfg.TelegramCfg, chatStateRepo, registry, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// setupConnector picks the real consultation backend connector or the mock
// depending on configuration
func setupConnector(cfg *config.Config, logger *zap.Logger) orchestrator.ConsultConnector {
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the consultation backend")
		return consult.NewMockConnector(logger)
	}

	logger.Info("Using real connector for the consultation backend",
		zap.String("service_url", cfg.ConsultConnectorCfg.Url),
	)
	return consult.NewConnector(cfg.ConsultConnectorCfg, logger)
}
