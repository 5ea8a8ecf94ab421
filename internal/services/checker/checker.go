// Package checker refreshes the prices of watched products and fires price alerts.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/pricewatch/internal/extractor"
	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/Houeta/pricewatch/internal/scraper"
)

// Checker is an orchestrator that performs a full price check cycle.
type Checker struct {
	log      *slog.Logger
	scraper  scraper.Scraper
	products sqlstore.ProductRepository
	alerts   sqlstore.AlertRepository
	notifier notifier.Notifier
	now      func() time.Time
}

type Interface interface {
	// CheckPrices re-scrapes every watched product and notifies owners of triggered alerts.
	CheckPrices(ctx context.Context) (*models.CheckReport, error)
}

// NewChecker creates a new Checker instance.
func NewChecker(
	log *slog.Logger,
	scr scraper.Scraper,
	products sqlstore.ProductRepository,
	alerts sqlstore.AlertRepository,
	ntf notifier.Notifier,
) *Checker {
	return &Checker{
		log:      log,
		scraper:  scr,
		products: products,
		alerts:   alerts,
		notifier: ntf,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckPrices performs the full price checking algorithm. Each product is scraped once no matter
// how many alerts watch it.
func (c *Checker) CheckPrices(ctx context.Context) (*models.CheckReport, error) {
	const opn = "checker.CheckPrices"
	log := c.log.With("op", opn)

	// 1. Getting the untriggered alerts
	watched, err := c.alerts.ListActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get active alerts: %w", opn, err)
	}
	log.InfoContext(ctx, "Starting price check", "alerts", len(watched))

	// 2. Grouping alerts by product
	order, byProduct := groupByProduct(watched)

	report := &models.CheckReport{}
	for _, productID := range order {
		if err = ctx.Err(); err != nil {
			return report, fmt.Errorf("%s: %w", opn, err)
		}

		group := byProduct[productID]
		product := group[0].Product
		report.Checked++

		// 3. Fetching the current price
		price, ok := c.currentPrice(ctx, product)
		if !ok {
			report.Failed++
			continue
		}

		// 4. Recording the observation
		if err = c.products.RecordPrice(ctx, product.ID, price, c.now()); err != nil {
			log.ErrorContext(ctx, "Failed to record price", "product_id", product.ID, "error", err)
			report.Failed++
		} else {
			report.Updated++
		}

		// 5. Firing alerts whose target has been reached
		for _, w := range group {
			if price > w.Alert.TargetPrice {
				continue
			}
			if err = c.fire(ctx, w.Alert, product, price); err != nil {
				report.Failed++
				continue
			}
			report.Triggered++
		}
	}

	log.InfoContext(ctx, "Price check complete",
		"checked", report.Checked, "updated", report.Updated, "triggered", report.Triggered, "failed", report.Failed)

	return report, nil
}

// currentPrice scrapes the product page. ok is false when no usable price was found.
func (c *Checker) currentPrice(ctx context.Context, product models.TrackedProduct) (float64, bool) {
	log := c.log.With("op", "checker.currentPrice", "product_id", product.ID)

	res, err := c.scraper.Scrape(ctx, product.URL)
	if err != nil {
		log.WarnContext(ctx, "Failed to scrape product", "error", err)
		return 0, false
	}
	if res == nil || !res.Success || res.Data == nil {
		reason := "empty scrape result"
		if res != nil {
			reason = res.Error
		}
		log.WarnContext(ctx, "Scrape was not successful", "reason", reason)
		return 0, false
	}

	price, _ := extractor.ExtractPrice(res.Data.Markdown)
	if price == 0 {
		log.WarnContext(ctx, "No price found on product page")
		return 0, false
	}

	return price, true
}

// fire notifies the alert owner and marks the alert triggered. An alert whose notification failed
// stays active and is retried on the next check. If marking fails after a successful send, the
// alert also stays active and the owner may be notified again.
func (c *Checker) fire(ctx context.Context, alert models.PriceAlert, product models.TrackedProduct, price float64) error {
	const opn = "checker.fire"
	log := c.log.With("op", opn, "alert_id", alert.ID)

	err := c.notifier.Send(ctx, models.Notification{
		Email:        alert.NotifyEmail,
		ChatID:       alert.NotifyChatID,
		ProductTitle: product.Title,
		ProductURL:   product.URL,
		CurrentPrice: price,
		TargetPrice:  alert.TargetPrice,
		Currency:     product.Currency,
		EmailType:    models.EmailTypePriceDrop,
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to send price drop notification", "error", err)
		return fmt.Errorf("%s: failed to notify: %w", opn, err)
	}

	if err = c.alerts.MarkAlertTriggered(ctx, alert.ID, c.now()); err != nil {
		log.ErrorContext(ctx, "Failed to mark alert as triggered", "error", err)
		return fmt.Errorf("%s: failed to mark alert triggered: %w", opn, err)
	}

	log.InfoContext(ctx, "Price alert triggered", "price", price, "target", alert.TargetPrice)

	return nil
}

func groupByProduct(watched []models.WatchedAlert) ([]string, map[string][]models.WatchedAlert) {
	var order []string
	byProduct := make(map[string][]models.WatchedAlert)
	for _, w := range watched {
		if _, seen := byProduct[w.Product.ID]; !seen {
			order = append(order, w.Product.ID)
		}
		byProduct[w.Product.ID] = append(byProduct[w.Product.ID], w)
	}

	return order, byProduct
}

// Run checks prices immediately and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.CheckPrices(ctx); err != nil && ctx.Err() == nil {
			c.log.ErrorContext(ctx, "Price check failed", "op", "checker.Run", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
