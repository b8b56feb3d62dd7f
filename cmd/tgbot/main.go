package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/app"
	"github.com/Alias1177/TokenScout/internal/bot"
	"github.com/Alias1177/TokenScout/internal/config"
	"github.com/Alias1177/TokenScout/internal/database"
	"github.com/Alias1177/TokenScout/internal/observability"
	"github.com/Alias1177/TokenScout/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	logger := config.SetupLogger(cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	metrics := observability.NewMetrics("", nil)

	// 3. Optional user registry
	var users bot.UserStore
	var counter server.UserCounter
	if cfg.DatabaseEnabled() {
		db, err := database.New(ctx, cfg.Database())
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		users, counter = db, db
		logger.Info().Str("host", cfg.DBHost).Msg("User registry enabled")
	} else {
		logger.Info().Msg("DB_HOST not set, user registry disabled")
	}

	// 4. Keep-alive server
	go func() {
		if err := server.New(cfg.Port, counter, metrics).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// 5. Initialize Telegram bot
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	handler := bot.New(api, app.NewAnalyzer(cfg, metrics), bot.Options{
		MaxConcurrent:   cfg.MaxConcurrentAnalyses,
		AnalysisTimeout: 3 * cfg.Timeout(),
		Users:           users,
		Metrics:         metrics,
	})

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutdown signal received, stopping updates...")
		api.StopReceivingUpdates()
	}()

	if err := handler.Run(ctx, updates); err != nil {
		logger.Error().Err(err).Msg("Bot stopped with error")
	}
	logger.Info().Msg("Bot stopped")
}
