package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Houeta/pricewatch/internal/models"
)

// Dispatcher routes a notification to every channel its recipient can be reached on.
type Dispatcher struct {
	log      *slog.Logger
	email    Notifier
	telegram Notifier
}

// NewDispatcher creates a Dispatcher. Either channel may be nil when it is not configured.
func NewDispatcher(log *slog.Logger, email, telegram Notifier) *Dispatcher {
	return &Dispatcher{log: log, email: email, telegram: telegram}
}

// Send delivers n by email when it has an address and by Telegram when it has a chat.
// It fails only if no channel delivered the message.
func (d *Dispatcher) Send(ctx context.Context, n models.Notification) error {
	const opn = "notifier.Dispatcher.Send"
	log := d.log.With("op", opn)

	var (
		delivered int
		errs      []error
	)

	if n.Email != "" && d.email != nil {
		if err := d.email.Send(ctx, n); err != nil {
			log.WarnContext(ctx, "Email delivery failed", "error", err)
			errs = append(errs, err)
		} else {
			delivered++
		}
	}

	if n.ChatID != 0 && d.telegram != nil {
		if err := d.telegram.Send(ctx, n); err != nil {
			log.WarnContext(ctx, "Telegram delivery failed", "error", err)
			errs = append(errs, err)
		} else {
			delivered++
		}
	}

	if delivered > 0 {
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", opn, ErrNoRecipient)
	}

	return fmt.Errorf("%s: %w", opn, errors.Join(errs...))
}
