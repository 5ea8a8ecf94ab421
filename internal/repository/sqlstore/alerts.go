package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

// CreateAlert stores a new price alert. Concurrent alerts for the same product are all kept.
func (r *Repository) CreateAlert(ctx context.Context, a *models.PriceAlert) error {
	const opn = "repository.sqlstore.CreateAlert"

	id := r.newID()
	createdAt := r.now()

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO price_alerts (id, product_id, owner_id, target_price, notify_email, notify_chat_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, a.ProductID, a.OwnerID, a.TargetPrice, a.NotifyEmail, a.NotifyChatID, createdAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	a.ID = id
	a.CreatedAt = createdAt

	return nil
}

// ListActiveAlerts returns every alert that has not fired yet along with its product.
func (r *Repository) ListActiveAlerts(ctx context.Context) ([]models.WatchedAlert, error) {
	const opn = "repository.sqlstore.ListActiveAlerts"

	rows, err := r.db.QueryContext(ctx, `
	SELECT a.id, a.product_id, a.owner_id, a.target_price, a.notify_email, a.notify_chat_id, a.created_at,
		p.id, p.owner_id, p.url, p.title, p.current_price, p.currency, p.created_at
	FROM price_alerts a
	JOIN tracked_products p ON p.id = a.product_id
	WHERE a.triggered_at IS NULL
	ORDER BY a.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var alerts []models.WatchedAlert
	for rows.Next() {
		var w models.WatchedAlert
		err = rows.Scan(
			&w.Alert.ID, &w.Alert.ProductID, &w.Alert.OwnerID, &w.Alert.TargetPrice,
			&w.Alert.NotifyEmail, &w.Alert.NotifyChatID, &w.Alert.CreatedAt,
			&w.Product.ID, &w.Product.OwnerID, &w.Product.URL, &w.Product.Title,
			&w.Product.CurrentPrice, &w.Product.Currency, &w.Product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan alert: %w", opn, err)
		}
		alerts = append(alerts, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return alerts, nil
}

// MarkAlertTriggered stamps the alert as fired so it is not reported again.
func (r *Repository) MarkAlertTriggered(ctx context.Context, id string, at time.Time) error {
	const opn = "repository.sqlstore.MarkAlertTriggered"

	res, err := r.db.ExecContext(ctx, "UPDATE price_alerts SET triggered_at = $1 WHERE id = $2", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return checkAffected(opn, res, repository.ErrAlertNotFound)
}

func checkAffected(opn string, res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}
	if affected == 0 {
		return notFound
	}

	return nil
}
