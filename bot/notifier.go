package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers digest messages to the configured chat. It satisfies the
// orchestrator's Sender interface.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(api *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{api: api, chatID: chatID}
}

// SendText delivers a plain HTML-formatted message.
func (n *Notifier) SendText(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendItem delivers one digest item with its action keyboard.
func (n *Notifier) SendItem(text string, itemID int64) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = ItemKeyboard(itemID)

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send item message: %w", err)
	}
	return nil
}
