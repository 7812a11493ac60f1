package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions attached to every delivered item.
const (
	ActionDetail    = "detail"
	ActionTranslate = "translate"
	ActionBookmark  = "bookmark"
	ActionRelated   = "related"
)

// ItemKeyboard builds the fixed 2×2 action grid keyed by item id.
func ItemKeyboard(itemID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 상세 보기", callbackData(ActionDetail, itemID)),
			tgbotapi.NewInlineKeyboardButtonData("🇰🇷 한국어 번역", callbackData(ActionTranslate, itemID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔖 북마크", callbackData(ActionBookmark, itemID)),
			tgbotapi.NewInlineKeyboardButtonData("🔗 관련 글", callbackData(ActionRelated, itemID)),
		),
	)
}

func callbackData(action string, itemID int64) string {
	return action + ":" + strconv.FormatInt(itemID, 10)
}
