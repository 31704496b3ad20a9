package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink delivers reminders to a user's Telegram chat.
type TelegramSink struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramSink(token string) (*TelegramSink, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramSink{bot: bot}, nil
}

// SendChat posts a message to the given chat. The bot API client carries its
// own timeout; the context only short-circuits a send that has not started.
func (s *TelegramSink) SendChat(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
