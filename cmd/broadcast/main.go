package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/TokenScout/internal/config"
	"github.com/Alias1177/TokenScout/internal/database"
	"github.com/Alias1177/TokenScout/internal/observability"
)

const (
	// Telegram allows about 30 messages per second for bots, stay below it
	messagesPerSecond = 20
	pushJob           = "tokenscout_broadcast"
)

func main() {
	messageFlag := flag.String("message", "", "announcement text (defaults to BROADCAST_MESSAGE)")
	markdown := flag.Bool("markdown", false, "send with Markdown parse mode")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := config.SetupLogger(cfg.LogLevel)

	message := strings.TrimSpace(*messageFlag)
	if message == "" {
		message = strings.TrimSpace(os.Getenv("BROADCAST_MESSAGE"))
	}
	if message == "" {
		logger.Fatal().Msg("No message: pass -message or set BROADCAST_MESSAGE")
	}
	if cfg.TelegramBotToken == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}
	if !cfg.DatabaseEnabled() {
		logger.Fatal().Msg("DB_HOST not set, nobody to broadcast to")
	}

	// Initialize database
	db, err := database.New(ctx, cfg.Database())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize Telegram bot
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	// Get all users from database
	users, err := db.GetAllUsers(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get users from database")
	}
	logger.Info().Int("users", len(users)).Msg("Found users in database")

	metrics := observability.NewMetrics("", prometheus.NewRegistry())
	limiter := rate.NewLimiter(rate.Limit(messagesPerSecond), 1)
	started := time.Now()
	successCount, errorCount := 0, 0

	for i, user := range users {
		if err := limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("Broadcast interrupted")
			break
		}

		msg := tgbotapi.NewMessage(user.ChatID, message)
		if *markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}

		_, err := bot.Send(msg)
		metrics.ObserveBroadcast(err)
		if err != nil {
			logger.Warn().Err(err).Int64("user_id", user.UserID).Int64("chat_id", user.ChatID).Msg("Failed to send message")
			errorCount++
			continue
		}
		successCount++
		logger.Debug().Int64("chat_id", user.ChatID).Msgf("Message sent [%d/%d]", i+1, len(users))
	}

	successRate := 0.0
	if len(users) > 0 {
		successRate = float64(successCount) / float64(len(users)) * 100
	}
	logger.Info().
		Int("total", len(users)).
		Int("sent", successCount).
		Int("failed", errorCount).
		Float64("success_rate", successRate).
		Dur("took", time.Since(started)).
		Msg("Broadcast completed")

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, pushJob); err != nil {
			logger.Warn().Err(err).Str("url", cfg.PushgatewayURL).Msg("Failed to push broadcast metrics")
		}
		cancel()
	}

	fmt.Printf("📊 Stats: %d sent, %d failed out of %d total users\n", successCount, errorCount, len(users))
}
