package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cerulean_ambassador_bot/internal/api"
	"cerulean_ambassador_bot/internal/bot"
	"cerulean_ambassador_bot/internal/dedup"
	"cerulean_ambassador_bot/internal/middleware"
	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/repository"
	"cerulean_ambassador_bot/internal/service"
	"cerulean_ambassador_bot/pkg/auth"
	"cerulean_ambassador_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if cfg.Database.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		zapLogger.Fatal("Failed to initialize telegram bot", zap.Error(err))
	}
	botAPI.Debug = cfg.Telegram.Debug

	botUsername := cfg.Telegram.BotUsername
	if botAPI.Self.UserName != "" {
		botUsername = botAPI.Self.UserName
	}
	zapLogger.Info("Authorized on telegram", zap.String("username", botUsername))

	if cfg.Telegram.WebhookURL != "" {
		err := bot.RegisterWebhook(botAPI, bot.WebhookConfig{
			URL:         cfg.Telegram.WebhookURL,
			SecretToken: cfg.Telegram.SecretToken,
		})
		if err != nil {
			zapLogger.Fatal("Failed to register webhook", zap.Error(err))
		}
	}

	var guard dedup.GuardI = dedup.Disabled{}
	if cfg.Redis.Addr != "" {
		rdb, err := dedup.Connect(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
		guard = dedup.NewGuard(rdb, cfg.Redis.TTL)
	}

	services := service.NewService(repo, service.Options{
		BotUsername: botUsername,
		AdminIDs:    cfg.Program.AdminIDs,
		GroupID:     cfg.Program.GroupID,
	})
	updateRouter := bot.NewRouter(botAPI, services, model.DefaultTasks(cfg.Program.ChannelURL, cfg.Program.TwitterURL))
	telegramAuth := auth.NewTelegramAuth(cfg.Telegram.SecretToken)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	api.NewWebhookRoutes(router, cfg.Server.Path, updateRouter, guard, telegramAuth)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("path", cfg.Server.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down server", zap.Error(err))
	}
}
