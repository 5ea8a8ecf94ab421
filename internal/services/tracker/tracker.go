// Package tracker runs the product tracking pipeline and the alert sub-flow.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Houeta/pricewatch/internal/extractor"
	"github.com/Houeta/pricewatch/internal/history"
	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/Houeta/pricewatch/internal/scraper"
)

// State is a step of a tracking request.
type State int

const (
	Idle State = iota
	Validating
	Scraping
	Extracting
	Found
	NotFound
	Persisting
	Presented
	Failed
)

var stateNames = [...]string{
	"idle", "validating", "scraping", "extracting", "found", "not_found", "persisting", "presented", "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Result is the outcome of a tracking request that was not aborted.
// Product is nil when State is NotFound.
type Result struct {
	State     State
	Product   *models.ProductRecord
	Persisted bool
	Warnings  []*Error
}

// AlertResult is the outcome of a successful SetAlert call.
type AlertResult struct {
	Alert    *models.PriceAlert
	Product  *models.TrackedProduct
	Warnings []*Error
}

// Interface is the tracking API used by delivery surfaces.
type Interface interface {
	Track(ctx context.Context, rawURL string, user *models.User) (*Result, error)
	SetAlert(ctx context.Context, user *models.User, productID, rawTarget string) (*AlertResult, error)
	ListProducts(ctx context.Context, user *models.User) ([]models.TrackedProduct, error)
	GetProduct(ctx context.Context, user *models.User, productID string) (*models.TrackedProduct, []models.HistoryEntry, error)
}

// Service sequences scraping, extraction, history synthesis, statistics and persistence.
type Service struct {
	log         *slog.Logger
	scraper     scraper.Scraper
	products    sqlstore.ProductRepository
	alerts      sqlstore.AlertRepository
	synthesizer *history.Synthesizer
	notifier    notifier.Notifier
}

// NewService creates a tracking service.
func NewService(
	log *slog.Logger,
	scr scraper.Scraper,
	products sqlstore.ProductRepository,
	alerts sqlstore.AlertRepository,
	synthesizer *history.Synthesizer,
	ntf notifier.Notifier,
) *Service {
	return &Service{
		log:         log,
		scraper:     scr,
		products:    products,
		alerts:      alerts,
		synthesizer: synthesizer,
		notifier:    ntf,
	}
}

// Track scrapes rawURL and assembles a product record with a synthesized history.
// Only invalid input and scrape failures are returned as errors. A page without a price yields a
// NotFound result carrying a PriceNotFound warning. The record is persisted when user is not nil;
// a persistence failure only adds a warning.
func (s *Service) Track(ctx context.Context, rawURL string, user *models.User) (*Result, error) {
	const opn = "tracker.Service.Track"
	log := s.log.With("op", opn, "url", rawURL)

	state := Validating
	target, err := ValidateURL(rawURL)
	if err != nil {
		log.InfoContext(ctx, "Rejected tracking request", "state", state, "error", err)
		return nil, err
	}

	state = Scraping
	log.DebugContext(ctx, "Tracking product", "state", state)

	scraped, err := s.scraper.Scrape(ctx, target)
	if err != nil {
		log.ErrorContext(ctx, "Scrape failed", "state", state, "error", err)
		return nil, newError(ScrapeFailed, MsgScrapeFailed, fmt.Errorf("%s: %w", opn, err))
	}
	if scraped == nil || !scraped.Success || scraped.Data == nil {
		msg := MsgScrapeNoData
		if scraped != nil && scraped.Error != "" {
			msg = scraped.Error
		}
		log.WarnContext(ctx, "Scrape was not successful", "state", state, "reason", msg)
		return nil, newError(ScrapeFailed, msg, nil)
	}

	state = Extracting
	parsed := extractor.Extract(scraped.Data.Markdown, scraped.Data.Metadata)

	if parsed.CurrentPrice == 0 {
		state = NotFound
		log.InfoContext(ctx, "No price found on page", "state", state, "title", parsed.Title)
		return &Result{
			State:    state,
			Warnings: []*Error{newError(PriceNotFound, MsgPriceNotFound, nil)},
		}, nil
	}

	state = Found
	series := s.synthesizer.Synthesize(parsed.CurrentPrice)
	stats, err := history.CalculateStats(series)
	if err != nil {
		// Synthesize never returns an empty series.
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	res := &Result{State: state, Product: models.NewProductRecord(target, parsed, series, stats)}

	if user != nil {
		state = Persisting
		product := &models.TrackedProduct{
			OwnerID:      user.ID,
			URL:          target,
			Title:        parsed.Title,
			CurrentPrice: parsed.CurrentPrice,
			Currency:     parsed.Currency,
		}

		if err = s.products.CreateProduct(ctx, product); err != nil {
			log.ErrorContext(ctx, "Failed to save tracked product", "state", state, "error", err)
			res.Warnings = append(res.Warnings, newError(PersistenceFailed, MsgSaveFailed, err))
		} else {
			res.Product.ID = product.ID
			res.Persisted = true
		}
	}

	res.State = Presented
	log.InfoContext(ctx, "Product tracked",
		"title", parsed.Title, "price", parsed.CurrentPrice, "currency", parsed.Currency, "persisted", res.Persisted)

	return res, nil
}

// SetAlert validates rawTarget against the product's current price, stores an alert and sends a
// confirmation. A failed confirmation is reported as a warning.
func (s *Service) SetAlert(
	ctx context.Context,
	user *models.User,
	productID, rawTarget string,
) (*AlertResult, error) {
	const opn = "tracker.Service.SetAlert"
	log := s.log.With("op", opn, "product_id", productID)

	if user == nil {
		return nil, newError(Unauthenticated, MsgSignInRequired, nil)
	}

	product, err := s.ownedProduct(ctx, user, productID)
	if err != nil {
		return nil, err
	}

	target, err := ParseTarget(rawTarget)
	if err != nil {
		return nil, err
	}
	if err = ValidateTarget(target, product.CurrentPrice); err != nil {
		return nil, err
	}

	alert := &models.PriceAlert{
		ProductID:    product.ID,
		OwnerID:      user.ID,
		TargetPrice:  target,
		NotifyEmail:  user.Email,
		NotifyChatID: user.ChatID,
	}
	if err = s.alerts.CreateAlert(ctx, alert); err != nil {
		log.ErrorContext(ctx, "Failed to save price alert", "error", err)
		return nil, newError(PersistenceFailed, MsgAlertFailed, fmt.Errorf("%s: %w", opn, err))
	}

	res := &AlertResult{Alert: alert, Product: product}

	err = s.notifier.Send(ctx, models.Notification{
		Email:        user.Email,
		ChatID:       user.ChatID,
		ProductTitle: product.Title,
		ProductURL:   product.URL,
		CurrentPrice: product.CurrentPrice,
		TargetPrice:  target,
		Currency:     product.Currency,
		EmailType:    models.EmailTypeConfirmation,
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to send alert confirmation", "error", err)
		res.Warnings = append(res.Warnings, newError(NotificationFailed, MsgConfirmationFailed, err))
	}

	log.InfoContext(ctx, "Price alert set", "alert_id", alert.ID, "target", target)

	return res, nil
}

// ListProducts returns the products tracked by user.
func (s *Service) ListProducts(ctx context.Context, user *models.User) ([]models.TrackedProduct, error) {
	const opn = "tracker.Service.ListProducts"

	if user == nil {
		return nil, newError(Unauthenticated, "Please sign in to see your tracked products.", nil)
	}

	products, err := s.products.ListProducts(ctx, user.ID)
	if err != nil {
		return nil, newError(PersistenceFailed, "Failed to load tracked products.", fmt.Errorf("%s: %w", opn, err))
	}

	return products, nil
}

// GetProduct returns a product tracked by user together with its stored price history.
func (s *Service) GetProduct(
	ctx context.Context,
	user *models.User,
	productID string,
) (*models.TrackedProduct, []models.HistoryEntry, error) {
	const opn = "tracker.Service.GetProduct"

	if user == nil {
		return nil, nil, newError(Unauthenticated, "Please sign in to see your tracked products.", nil)
	}

	product, err := s.ownedProduct(ctx, user, productID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.products.GetPriceHistory(ctx, product.ID)
	if err != nil {
		return nil, nil, newError(PersistenceFailed, "Failed to load price history.", fmt.Errorf("%s: %w", opn, err))
	}

	return product, entries, nil
}

// ownedProduct loads a product and hides products of other owners.
func (s *Service) ownedProduct(ctx context.Context, user *models.User, productID string) (*models.TrackedProduct, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, newError(ProductNotFound, MsgProductNotFound, err)
		}
		return nil, newError(PersistenceFailed, MsgAlertFailed, err)
	}
	if product.OwnerID != user.ID {
		return nil, newError(ProductNotFound, MsgProductNotFound, nil)
	}

	return product, nil
}

// ValidateURL accepts absolute http(s) URLs with a host and returns them trimmed.
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", newError(InvalidInput, MsgInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", newError(InvalidInput, MsgInvalidURL, nil)
	}

	return trimmed, nil
}

// ParseTarget parses a user-entered target price.
func ParseTarget(rawTarget string) (float64, error) {
	target, err := strconv.ParseFloat(strings.TrimSpace(rawTarget), 64)
	if err != nil {
		return 0, newError(InvalidTarget, MsgInvalidPrice, err)
	}

	return target, nil
}

// ValidateTarget accepts targets strictly between zero and current.
func ValidateTarget(target, current float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return newError(InvalidTarget, MsgInvalidPrice, nil)
	}
	if target >= current {
		return newError(InvalidTarget, MsgTargetTooHigh, nil)
	}

	return nil
}
