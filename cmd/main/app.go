package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Houeta/pricewatch/internal/bot"
	"github.com/Houeta/pricewatch/internal/config"
	httpdelivery "github.com/Houeta/pricewatch/internal/delivery/http"
	"github.com/Houeta/pricewatch/internal/history"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/Houeta/pricewatch/internal/scraper"
	"github.com/Houeta/pricewatch/internal/services/checker"
	"github.com/Houeta/pricewatch/internal/services/tracker"
)

const emailTimeout = 15 * time.Second

// application holds the wired components shared by all commands.
type application struct {
	cfg      *config.Config
	log      *slog.Logger
	repo     *sqlstore.Repository
	notifier notifier.Notifier
	tracker  *tracker.Service
	checker  *checker.Checker
	bot      *bot.Bot // nil when no Telegram token is configured
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	repo, err := sqlstore.NewRepository(ctx, logger, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var scr scraper.Scraper
	if cfg.Scraper.Mode == config.ScraperService {
		scr = scraper.NewServiceClient(logger, cfg.Scraper.URL, cfg.Scraper.APIKey, cfg.Scraper.Timeout, cfg.Scraper.Rate)
	} else {
		scr = scraper.NewCollector(logger, cfg.Scraper.Timeout)
	}

	var email, telegram notifier.Notifier
	if cfg.Email.APIKey != "" {
		email = notifier.NewEmailClient(logger, cfg.Email.URL, cfg.Email.APIKey, cfg.Email.From, emailTimeout)
	} else {
		logger.WarnContext(ctx, "Email notifications are disabled: PW_EMAIL_API_KEY is not set")
	}

	var api bot.API
	if cfg.Tg.Token != "" {
		tb, tbErr := bot.NewAPI(logger, cfg.Tg.Token, cfg.Tg.Timeout)
		if tbErr != nil {
			repo.Close()
			return nil, tbErr
		}
		api = tb
		telegram = notifier.NewTelegram(logger, api)
	}

	dispatcher := notifier.NewDispatcher(logger, email, telegram)
	trk := tracker.NewService(logger, scr, repo, repo, history.NewSynthesizer(), dispatcher)

	a := &application{
		cfg:      cfg,
		log:      logger,
		repo:     repo,
		notifier: dispatcher,
		tracker:  trk,
		checker:  checker.NewChecker(logger, scr, repo, repo, dispatcher),
	}
	if api != nil {
		a.bot = bot.NewBot(logger, api, trk)
	}

	return a, nil
}

func (a *application) router() *gin.Engine {
	handler := httpdelivery.NewHandler(a.log, a.tracker, a.notifier)
	return httpdelivery.SetupRouter(a.cfg.Env, a.cfg.HTTP, a.log, handler)
}

// Close releases the storage connection. It is safe to call more than once.
func (a *application) Close() {
	if a.repo == nil {
		return
	}
	_ = a.repo.Close()
	a.repo = nil
}
