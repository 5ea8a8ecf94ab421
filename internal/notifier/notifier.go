// Package notifier delivers price alert messages by email and Telegram.
package notifier

import (
	"context"
	"errors"

	"github.com/Houeta/pricewatch/internal/models"
)

// ErrNoRecipient is returned when a notification has no address any channel can deliver to.
var ErrNoRecipient = errors.New("notification has no recipient")

// Notifier delivers a single notification.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}
