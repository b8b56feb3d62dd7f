package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Menu buttons
const (
	ButtonAnalyze = "🔍 Analyze token"
	ButtonHelp    = "ℹ️ Help"
)

const (
	refreshPrefix = "refresh:"
	// Telegram rejects callback data longer than this
	maxCallbackData = 64
)

// mainMenuKeyboard returns the persistent reply keyboard
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonAnalyze),
			tgbotapi.NewKeyboardButton(ButtonHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// reportKeyboard returns the inline buttons under a report.
// The second value is false when there is nothing to show.
func reportKeyboard(query, pairURL string) (tgbotapi.InlineKeyboardMarkup, bool) {
	var row []tgbotapi.InlineKeyboardButton

	if data := refreshPrefix + query; len(data) <= maxCallbackData {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔁 Refresh", data))
	}
	if pairURL != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL("📊 DexScreener", pairURL))
	}

	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}
