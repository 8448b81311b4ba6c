package main

import (
	"fmt"
	"os"

	"cloudinbox/internal/config"
	"cloudinbox/internal/infrastructure"
	httpiface "cloudinbox/internal/interfaces/http"
	"cloudinbox/internal/logger"
	"cloudinbox/internal/repository"
	"cloudinbox/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file; deployed environments set real variables instead
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer pgClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pgClient.Pool)
	chatRepo := repository.NewChatRepository(pgClient.Pool)
	catalogRepo := repository.NewCatalogRepository(pgClient.Pool)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret, cfg.SessionDurationDays, log)
	cache := usecases.NewConversationCache()
	conversationService := usecases.NewConversationService(chatRepo, cache, log)

	webhookClient := infrastructure.NewWebhookClient(cfg.WebhookURL, cfg.WebhookUser, cfg.WebhookPassword, log)
	replyLimiter := infrastructure.NewReplyRateLimiter(0.5, 5)
	defer replyLimiter.Close()
	replyService := usecases.NewReplyService(webhookClient, chatRepo, cache, replyLimiter, log)

	// HTTP layer
	middleware := httpiface.NewMiddleware(authUsecase, cfg.SessionCookieName)
	authHandler := httpiface.NewAuthHandler(authUsecase, cfg, log)
	chatHandler := httpiface.NewChatHandler(conversationService, replyService, chatRepo, cache, log)
	catalogHandler := httpiface.NewCatalogHandler(catalogRepo, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	httpiface.SetupRoutes(r, cfg, authHandler, chatHandler, catalogHandler, middleware)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	log.Info("starting server", "addr", addr, "env", cfg.Env, "webhook_configured", webhookClient.Configured())
	if err := r.Run(addr); err != nil {
		log.Fatal("failed to start HTTP server", "error", err)
	}
}
