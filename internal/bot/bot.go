// Package bot implements the Telegram front end.
//
// The bot keeps no per-chat state. A pending "send me an address" step is a
// ForceReply prompt, and the answer is recognized by the message it replies to.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/analyzer"
	"github.com/Alias1177/TokenScout/internal/chain"
	"github.com/Alias1177/TokenScout/internal/observability"
	"github.com/Alias1177/TokenScout/internal/render"
	"github.com/Alias1177/TokenScout/models"
)

// User facing texts
const (
	PromptText   = "Send me the token address or name to analyze.\nExample: 0x6982508145454Ce325dDbE47a25d4ec3d2311933"
	NotFoundText = "❌ Token not found or unsupported."
	ErrorText    = "❌ Error fetching token info. Try again later."
	HintText     = "Send me a token address or use /analyze <token_address>."
	UnknownText  = "Unknown command. Send /help to see what I can do."
)

// Sender is the part of *tgbotapi.BotAPI the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Analyzer runs one token analysis
type Analyzer interface {
	Analyze(ctx context.Context, query string) (*analyzer.Report, error)
}

// UserStore records who talked to the bot
type UserStore interface {
	UpsertUser(ctx context.Context, user models.BotUser) error
}

// Options configures a Bot
type Options struct {
	// MaxConcurrent bounds the number of updates handled at once
	MaxConcurrent   int
	AnalysisTimeout time.Duration
	Users           UserStore
	Metrics         *observability.Metrics
}

// Bot dispatches Telegram updates
type Bot struct {
	api      Sender
	analyzer Analyzer
	users    UserStore
	metrics  *observability.Metrics
	timeout  time.Duration
	sem      chan struct{}
	logger   zerolog.Logger
}

// New creates a bot. Users and Metrics may be nil.
func New(api Sender, an Analyzer, opts Options) *Bot {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 45 * time.Second
	}

	return &Bot{
		api:      api,
		analyzer: an,
		users:    opts.Users,
		metrics:  opts.Metrics,
		timeout:  opts.AnalysisTimeout,
		sem:      make(chan struct{}, opts.MaxConcurrent),
		logger:   log.With().Str("component", "bot").Logger(),
	}
}

// Run handles updates until ctx is cancelled or the channel is closed,
// then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			select {
			case b.sem <- struct{}{}:
			case <-ctx.Done():
				return nil
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-b.sem }()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update synchronously
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("Update handler panicked")
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.metrics.ObserveUpdate("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	default:
		b.metrics.ObserveUpdate("other")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	b.registerUser(ctx, msg)

	if msg.IsCommand() {
		b.metrics.ObserveUpdate("command")
		switch msg.Command() {
		case "start":
			b.sendWelcome(chatID)
		case "help":
			b.send(tgbotapi.NewMessage(chatID, render.HelpText))
		case "analyze":
			query := strings.TrimSpace(msg.CommandArguments())
			if query == "" {
				b.sendPrompt(chatID, msg.MessageID)
				return
			}
			b.analyze(ctx, chatID, 0, query)
		default:
			b.send(tgbotapi.NewMessage(chatID, UnknownText))
		}
		return
	}

	b.metrics.ObserveUpdate("message")
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == ButtonAnalyze:
		b.sendPrompt(chatID, 0)
	case text == ButtonHelp:
		b.send(tgbotapi.NewMessage(chatID, render.HelpText))
	case isPromptReply(msg):
		if text == "" {
			b.sendPrompt(chatID, msg.MessageID)
			return
		}
		b.analyze(ctx, chatID, 0, text)
	case chain.IsAddress(text):
		b.analyze(ctx, chatID, 0, text)
	default:
		b.send(tgbotapi.NewMessage(chatID, HintText))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback")
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	query, ok := strings.CutPrefix(cb.Data, refreshPrefix)
	if !ok || strings.TrimSpace(query) == "" {
		b.logger.Debug().Str("data", cb.Data).Msg("Ignoring callback")
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, render.Analyzing(query)))
	b.analyze(ctx, chatID, messageID, query)
}

// analyze runs the analysis and writes the outcome into messageID,
// sending a new placeholder first when messageID is zero.
func (b *Bot) analyze(ctx context.Context, chatID int64, messageID int, query string) {
	logger := b.logger.With().Int64("chat_id", chatID).Str("query", query).Logger()

	if messageID == 0 {
		sent, err := b.api.Send(tgbotapi.NewMessage(chatID, render.Analyzing(query)))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to send placeholder")
		} else {
			messageID = sent.MessageID
		}
	}

	actx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	report, err := b.analyzer.Analyze(actx, query)
	if err != nil {
		text := ErrorText
		if errors.Is(err, analyzer.ErrNotFound) {
			text = NotFoundText
		} else {
			logger.Error().Err(err).Msg("Analysis failed")
		}
		b.deliver(chatID, messageID, text, "", nil)
		return
	}

	refresh := query
	if report.Address != "" {
		refresh = report.Address
	}
	var markup *tgbotapi.InlineKeyboardMarkup
	if kb, ok := reportKeyboard(refresh, report.PairURL); ok {
		markup = &kb
	}

	if err := b.deliver(chatID, messageID, render.Report(report, render.Markdown), tgbotapi.ModeMarkdown, markup); err != nil {
		logger.Warn().Err(err).Msg("Markdown report rejected, retrying as plain text")
		if err := b.deliver(chatID, messageID, render.Report(report, render.Plain), "", markup); err != nil {
			logger.Error().Err(err).Msg("Failed to deliver report")
		}
	}
}

// deliver edits messageID, or sends a new message when it is zero
func (b *Bot) deliver(chatID int64, messageID int, text, parseMode string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var c tgbotapi.Chattable
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = parseMode
		edit.DisableWebPagePreview = true
		edit.ReplyMarkup = markup
		c = edit
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = parseMode
		msg.DisableWebPagePreview = true
		if markup != nil {
			msg.ReplyMarkup = *markup
		}
		c = msg
	}

	_, err := b.api.Send(c)
	return err
}

func (b *Bot) sendWelcome(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, render.WelcomeText)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

func (b *Bot) sendPrompt(chatID int64, replyTo int) {
	msg := tgbotapi.NewMessage(chatID, PromptText)
	msg.ReplyToMessageID = replyTo
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to send message")
	}
}

func (b *Bot) registerUser(ctx context.Context, msg *tgbotapi.Message) {
	if b.users == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	user := models.BotUser{
		UserID:   msg.From.ID,
		ChatID:   msg.Chat.ID,
		Username: msg.From.UserName,
	}
	if err := b.users.UpsertUser(ctx, user); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", user.UserID).Msg("Failed to register user")
	}
}

// isPromptReply reports whether msg answers our ForceReply prompt
func isPromptReply(msg *tgbotapi.Message) bool {
	parent := msg.ReplyToMessage
	return parent != nil && parent.From != nil && parent.From.IsBot && parent.Text == PromptText
}
