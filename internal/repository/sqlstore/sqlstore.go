package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ProductRepository stores tracked products and their price history.
type ProductRepository interface {
	// CreateProduct assigns an ID to p and stores it with an initial price history point.
	CreateProduct(ctx context.Context, p *models.TrackedProduct) error
	// GetProduct returns the product with the given ID or repository.ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*models.TrackedProduct, error)
	// ListProducts returns all products owned by ownerID, newest first.
	ListProducts(ctx context.Context, ownerID string) ([]models.TrackedProduct, error)
	// RecordPrice updates the current price and appends a history point.
	RecordPrice(ctx context.Context, productID string, price float64, at time.Time) error
	// GetPriceHistory returns persisted history points, oldest first.
	GetPriceHistory(ctx context.Context, productID string) ([]models.HistoryEntry, error)
}

// AlertRepository stores price alerts.
type AlertRepository interface {
	// CreateAlert assigns an ID to a and stores it.
	CreateAlert(ctx context.Context, a *models.PriceAlert) error
	// ListActiveAlerts returns untriggered alerts joined with their products.
	ListActiveAlerts(ctx context.Context) ([]models.WatchedAlert, error)
	// MarkAlertTriggered records the moment an alert fired.
	MarkAlertTriggered(ctx context.Context, id string, at time.Time) error
}

// Repository is a database/sql backed store for products, history and alerts.
// Queries use $n placeholders, understood by both sqlite3 and postgres.
type Repository struct {
	db    *sql.DB
	log   *slog.Logger
	newID func() string
	now   func() time.Time
}

// NewRepository opens the database for driver, verifies the connection and migrates the schema.
func NewRepository(ctx context.Context, log *slog.Logger, driver, dsn string) (*Repository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	dtb, err := sql.Open(driver, dataSource(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// SQLite allows one writer, and every connection to ":memory:" opens its own database.
	if driver == DriverSQLite {
		dtb.SetMaxOpenConns(1)
	}

	// Check if the connection is actually established.
	if err = dtb.PingContext(ctx); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	if err = initSchema(ctx, dtb); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	log.InfoContext(ctx, "Storage is ready", "driver", driver)

	return newRepository(dtb, log), nil
}

// NewForTest wraps an existing connection without running migrations.
func NewForTest(dtb *sql.DB) *Repository {
	return newRepository(dtb, slog.New(slog.DiscardHandler))
}

func newRepository(dtb *sql.DB, log *slog.Logger) *Repository {
	return &Repository{
		db:    dtb,
		log:   log,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// dataSource enables foreign keys for sqlite files unless the DSN already sets options.
func dataSource(driver, dsn string) string {
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		return dsn + "?_foreign_keys=on"
	}
	return dsn
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS tracked_products (
		id TEXT PRIMARY KEY NOT NULL,
		owner_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		current_price DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tracked_products_owner ON tracked_products(owner_id);

	CREATE TABLE IF NOT EXISTS price_history (
		product_id TEXT NOT NULL REFERENCES tracked_products(id) ON DELETE CASCADE,
		price DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id);

	CREATE TABLE IF NOT EXISTS price_alerts (
		id TEXT PRIMARY KEY NOT NULL,
		product_id TEXT NOT NULL REFERENCES tracked_products(id) ON DELETE CASCADE,
		owner_id TEXT NOT NULL,
		target_price DOUBLE PRECISION NOT NULL,
		notify_email TEXT NOT NULL DEFAULT '',
		notify_chat_id BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		triggered_at TIMESTAMP NULL
	);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlstore.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}
