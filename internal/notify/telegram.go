package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender delivers fired reminders as Telegram messages to one chat.
type TelegramSender struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &TelegramSender{api: api, chatID: chatID}, nil
}

func (s *TelegramSender) Send(req Request) error {
	msg := tgbotapi.NewMessage(s.chatID, fmt.Sprintf("%s\n%s", req.Title, req.Body))
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder %s: %w", req.ID, err)
	}
	return nil
}
