package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
)

const productColumns = "id, owner_id, url, title, current_price, currency, created_at"

// CreateProduct stores p together with its first price history point in one transaction.
func (r *Repository) CreateProduct(ctx context.Context, p *models.TrackedProduct) error {
	const opn = "repository.sqlstore.CreateProduct"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit only returns sql.ErrTxDone

	id := r.newID()
	createdAt := r.now()

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO tracked_products ("+productColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		id, p.OwnerID, p.URL, p.Title, p.CurrentPrice, p.Currency, createdAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert product: %w", opn, err)
	}

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO price_history (product_id, price, recorded_at) VALUES ($1, $2, $3)",
		id, p.CurrentPrice, createdAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert initial price point: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	p.ID = id
	p.CreatedAt = createdAt

	return nil
}

// GetProduct returns a tracked product by ID.
func (r *Repository) GetProduct(ctx context.Context, id string) (*models.TrackedProduct, error) {
	const opn = "repository.sqlstore.GetProduct"

	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM tracked_products WHERE id = $1", id)

	var p models.TrackedProduct
	err := row.Scan(&p.ID, &p.OwnerID, &p.URL, &p.Title, &p.CurrentPrice, &p.Currency, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", opn, err)
	}

	return &p, nil
}

// ListProducts returns every product owned by ownerID, newest first.
func (r *Repository) ListProducts(ctx context.Context, ownerID string) ([]models.TrackedProduct, error) {
	const opn = "repository.sqlstore.ListProducts"

	rows, err := r.db.QueryContext(
		ctx,
		"SELECT "+productColumns+" FROM tracked_products WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get products: %w", opn, err)
	}
	defer rows.Close()

	var products []models.TrackedProduct
	for rows.Next() {
		var p models.TrackedProduct
		if err = rows.Scan(&p.ID, &p.OwnerID, &p.URL, &p.Title, &p.CurrentPrice, &p.Currency, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return products, nil
}

// RecordPrice atomically updates the product's current price and appends a history point.
func (r *Repository) RecordPrice(ctx context.Context, productID string, price float64, at time.Time) error {
	const opn = "repository.sqlstore.RecordPrice"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit only returns sql.ErrTxDone

	res, err := tx.ExecContext(ctx, "UPDATE tracked_products SET current_price = $1 WHERE id = $2", price, productID)
	if err != nil {
		return fmt.Errorf("%s: failed to update current price: %w", opn, err)
	}

	if err = checkAffected(opn, res, repository.ErrProductNotFound); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO price_history (product_id, price, recorded_at) VALUES ($1, $2, $3)",
		productID, price, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert price point: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// GetPriceHistory returns the stored price points of a product, oldest first.
func (r *Repository) GetPriceHistory(ctx context.Context, productID string) ([]models.HistoryEntry, error) {
	const opn = "repository.sqlstore.GetPriceHistory"

	rows, err := r.db.QueryContext(
		ctx,
		"SELECT product_id, price, recorded_at FROM price_history WHERE product_id = $1 ORDER BY recorded_at ASC",
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get price history: %w", opn, err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err = rows.Scan(&e.ProductID, &e.Price, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan price point: %w", opn, err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return entries, nil
}
