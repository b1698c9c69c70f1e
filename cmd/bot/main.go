package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/config"
	"ptero-discord-admin/internal/crypto"
	"ptero-discord-admin/internal/db"
	"ptero-discord-admin/internal/db/repository"
	"ptero-discord-admin/internal/handlers"
	"ptero-discord-admin/internal/services"
	"ptero-discord-admin/pkg/discordbot"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Derive encryption keys; secrets stay in memory only
	cipher, err := crypto.New(cfg.Security.Secrets()...)
	if err != nil {
		logger.Fatal("Failed to initialize encryption: ", err)
	}

	// Open database and bring schema up to date
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database: ", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations: ", err)
	}

	// Repositories
	guildRepo := repository.NewGuildRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	serverRepo := repository.NewServerRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	// Services
	auditService := services.NewAuditService(auditRepo, logger)
	credentialService := services.NewCredentialService(userRepo, serverRepo, cipher, auditService, logger)
	guildService := services.NewGuildService(guildRepo, auditService, logger)
	linkService := services.NewServerLinkService(serverRepo, userRepo, auditService, logger)
	adminService := services.NewAdminService(userRepo, credentialService, auditService, logger)
	panelService := services.NewPanelService(credentialService, logger)

	// Handlers
	base := handlers.NewBaseHandler(
		guildService, credentialService, linkService,
		adminService, panelService, auditService, logger,
	)
	commandHandlers := []handlers.CommandHandler{
		handlers.NewSetupHandler(base),
		handlers.NewConfigHandler(base),
		handlers.NewServerHandler(base),
		handlers.NewUserHandler(base),
		handlers.NewAdminHandler(base),
		handlers.NewUtilityHandler(base, cfg.Audit.RetentionDays),
	}

	// Initialize bot
	bot, err := discordbot.NewBot(cfg, commandHandlers, logger)
	if err != nil {
		logger.Fatal("Failed to create bot: ", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start bot
	logger.Info("Starting Pterodactyl Discord bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed: ", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
