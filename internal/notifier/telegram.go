package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/Houeta/pricewatch/internal/models"
	"gopkg.in/telebot.v4"
)

// Sender is the part of the Telegram bot API used to deliver messages.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Telegram delivers notifications as chat messages.
type Telegram struct {
	log    *slog.Logger
	sender Sender
}

// NewTelegram creates a Telegram notifier on top of a bot API.
func NewTelegram(log *slog.Logger, sender Sender) *Telegram {
	return &Telegram{log: log, sender: sender}
}

// Send posts n to its chat.
func (t *Telegram) Send(ctx context.Context, n models.Notification) error {
	const opn = "notifier.Telegram.Send"

	if n.ChatID == 0 {
		return fmt.Errorf("%s: %w", opn, ErrNoRecipient)
	}

	if _, err := t.sender.Send(&telebot.Chat{ID: n.ChatID}, Message(n), telebot.ModeHTML); err != nil {
		return fmt.Errorf("%s: failed to send message: %w", opn, err)
	}

	t.log.InfoContext(ctx, "Telegram notification sent", "op", opn, "chat_id", n.ChatID, "type", n.EmailType)

	return nil
}

// Message formats n as an HTML chat message.
func Message(n models.Notification) string {
	header := "🎉 <b>Price drop!</b>"
	if n.IsConfirmation() {
		header = "🔔 <b>Price alert set</b>"
	}

	return fmt.Sprintf(
		"%s\n\n%s\nCurrent: <b>%s</b>\nTarget: %s\n\n%s",
		header,
		html.EscapeString(n.ProductTitle),
		FormatPrice(n.Currency, n.CurrentPrice),
		FormatPrice(n.Currency, n.TargetPrice),
		n.ProductURL,
	)
}
