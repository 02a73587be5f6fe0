package bot

import (
	"context"

	"github.com/go-telegram/bot"
)

// Sender delivers push notifications through the Telegram API. It
// satisfies the chat sender contract of the notification dispatcher;
// the chat id equals the user id for private chats.
type Sender struct {
	bot *bot.Bot
}

// SendMessage sends a plain text message to the user's private chat.
func (s *Sender) SendMessage(ctx context.Context, userID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	return err
}
