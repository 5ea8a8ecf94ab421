package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/pricewatch/internal/services/tracker"
	"gopkg.in/telebot.v4"
)

// requestTimeout bounds a single tracking or alert request started from a chat.
const requestTimeout = 90 * time.Second

// Bot answers price tracking commands sent in Telegram chats.
type Bot struct {
	bot     API
	log     *slog.Logger
	tracker tracker.Interface
}

// NewAPI connects to Telegram and returns a long polling bot API.
func NewAPI(log *slog.Logger, token string, poller time.Duration) (*telebot.Bot, error) {
	api, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Telegram API authorized", "account", api.Me.Username)

	return api, nil
}

// NewBot wires the command handlers to api.
func NewBot(log *slog.Logger, api API, trk tracker.Interface) *Bot {
	b := &Bot{bot: api, log: log, tracker: trk}
	b.registerCommands()

	return b
}

// Start blocks while the bot consumes chat updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is listening for commands")
	b.bot.Start()
}

// Stop shuts the poller down.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is shutting down")
	b.bot.Stop()
}

func (b *Bot) registerCommands() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/track", b.trackHandler)
	b.bot.Handle("/alert", b.alertHandler)
}
