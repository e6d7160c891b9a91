package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/academiagorila/bjj-schedule/internal/logger"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts messages to one Telegram chat
type TelegramNotifier struct {
	bot    messageSender
	chatID int64
}

// NewTelegramNotifier authenticates the bot token and targets chatID.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("missing Telegram bot token or chat id")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Notify sends each message as a plain-text chat message.
func (n *TelegramNotifier) Notify(ctx context.Context, messages []string) error {
	for i, text := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, truncate(text, TelegramLimit))
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send telegram message %d/%d: %w", i+1, len(messages), err)
		}
		logger.IncrCounter("notifier.telegram.sent")
	}
	return nil
}
