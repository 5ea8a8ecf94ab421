package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/internal/services/tracker"
	"gopkg.in/telebot.v4"
)

const (
	helpMessage = "Hello! Send me a product link and I will track its price.\n\n" +
		"/track <url> - show the price history of a product\n" +
		"/alert <product id> <target price> - notify me when the price drops"
	trackUsage   = "Usage: /track &lt;product url&gt;"
	alertUsage   = "Usage: /alert &lt;product id&gt; &lt;target price&gt;"
	genericError = "Something went wrong. Please try again."
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	if err := ctx.Send(helpMessage); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// trackHandler process command /track <url>.
func (b *Bot) trackHandler(ctx telebot.Context) error {
	rawURL := strings.TrimSpace(ctx.Message().Payload)
	if rawURL == "" {
		return reply(ctx, trackUsage)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := ctx.Notify(telebot.Typing); err != nil {
		b.log.Debug("Failed to send chat action", "error", err)
	}

	res, err := b.tracker.Track(reqCtx, rawURL, chatUser(ctx))
	if err != nil {
		b.log.Warn("Tracking request failed", "op", "bot.trackHandler", "error", err)
		return reply(ctx, html.EscapeString(tracker.UserMessage(err, genericError)))
	}

	return reply(ctx, FormatTrackResult(res))
}

// alertHandler process command /alert <product id> <target price>.
func (b *Bot) alertHandler(ctx telebot.Context) error {
	args := ctx.Args()
	if len(args) != 2 { //nolint:mnd // product id and target
		return reply(ctx, alertUsage)
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := b.tracker.SetAlert(reqCtx, chatUser(ctx), args[0], args[1])
	if err != nil {
		b.log.Warn("Alert request failed", "op", "bot.alertHandler", "error", err)
		return reply(ctx, html.EscapeString(tracker.UserMessage(err, genericError)))
	}

	return reply(ctx, FormatAlertResult(res))
}

// reply sends text in HTML mode; text must already be escaped.
func reply(ctx telebot.Context, text string) error {
	if err := ctx.Send(text, telebot.ModeHTML); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// chatUser identifies the sender of an update.
func chatUser(ctx telebot.Context) *models.User {
	sender := ctx.Sender()
	if sender == nil {
		return nil
	}

	user := &models.User{ID: "tg:" + strconv.FormatInt(sender.ID, 10)}
	if chat := ctx.Chat(); chat != nil {
		user.ChatID = chat.ID
	}

	return user
}

// FormatTrackResult renders a tracking result as an HTML chat message.
func FormatTrackResult(res *tracker.Result) string {
	if res.Product == nil {
		msg := tracker.MsgPriceNotFound
		if len(res.Warnings) > 0 {
			msg = res.Warnings[0].Message
		}
		return html.EscapeString(msg)
	}

	rec := res.Product
	price := func(v float64) string { return notifier.FormatPrice(rec.Currency, v) }

	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 <b>%s</b>\n", html.EscapeString(rec.Title))
	fmt.Fprintf(&sb, "Price: <b>%s</b>\n", price(rec.CurrentPrice))
	fmt.Fprintf(&sb, "Lowest: %s | Average: %s | Highest: %s\n",
		price(rec.LowestPrice), price(rec.AveragePrice), price(rec.HighestPrice))

	if rec.IsGoodDeal {
		sb.WriteString("🔥 Good deal! The price is close to its 30 day low.\n")
	} else {
		fmt.Fprintf(&sb, "Change vs average: %+.1f%%\n", rec.PriceChangePercent)
	}

	if res.Persisted {
		fmt.Fprintf(&sb, "\nSaved as <code>%s</code>. Set an alert with /alert %s &lt;target price&gt;", rec.ID, rec.ID)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "\n⚠️ %s", html.EscapeString(w.Message))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatAlertResult renders a created alert as an HTML chat message.
func FormatAlertResult(res *tracker.AlertResult) string {
	msg := fmt.Sprintf(
		"🔔 Alert set! We'll notify you when <b>%s</b> drops below %s",
		html.EscapeString(res.Product.Title),
		notifier.FormatPrice(res.Product.Currency, res.Alert.TargetPrice),
	)

	for _, w := range res.Warnings {
		msg += "\n⚠️ " + html.EscapeString(w.Message)
	}

	return msg
}
