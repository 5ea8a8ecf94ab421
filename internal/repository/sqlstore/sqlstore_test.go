package sqlstore_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/Houeta/pricewatch/internal/repository/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository_Success(t *testing.T) {
	ctx := t.Context()

	dbPath := filepath.Join(t.TempDir(), "testdb.sqlite")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlstore.NewRepository(ctx, logger, sqlstore.DriverSQLite, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	assert.NotNil(t, repo)
}

func TestNewRepository_InMemorySharesOneDatabase(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := sqlstore.NewRepository(ctx, logger, sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, 1, repo.DB().Stats().MaxOpenConnections)

	product := &models.TrackedProduct{OwnerID: "user-1", URL: "https://shop.example/item", Title: "Lamp", Currency: "₹"}
	require.NoError(t, repo.CreateProduct(ctx, product))

	products, err := repo.ListProducts(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestNewRepository_InvalidPath(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := sqlstore.NewRepository(ctx, logger, sqlstore.DriverSQLite, "/invalid/path/to/db.sqlite")

	require.Error(t, err)
}

func TestNewRepository_UnsupportedDriver(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := sqlstore.NewRepository(ctx, logger, "mysql", "user@/db")

	require.ErrorContains(t, err, "unsupported storage driver")
}

func TestRepository_Close(t *testing.T) {
	repo := newTestDB(t)

	require.NoError(t, repo.Close())
}

func TestSchemaInitialization(t *testing.T) {
	repo := newTestDB(t)

	rows, err := repo.DB().Query("SELECT name FROM sqlite_master WHERE type='table'")
	require.NoError(t, err)
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	for _, table := range []string{"tracked_products", "price_history", "price_alerts"} {
		assert.True(t, found[table], "expected table %q to exist, got: %+v", table, found)
	}
}

func TestRepository_SQLiteRoundTrip(t *testing.T) {
	ctx := t.Context()
	repo := newTestDB(t)

	product := &models.TrackedProduct{
		OwnerID:      "user-1",
		URL:          "https://shop.example/item",
		Title:        "Desk Lamp",
		CurrentPrice: 1499,
		Currency:     "₹",
	}
	require.NoError(t, repo.CreateProduct(ctx, product))
	require.NotEmpty(t, product.ID)

	require.NoError(t, repo.RecordPrice(ctx, product.ID, 1299, time.Now().Add(time.Hour)))

	got, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1299, got.CurrentPrice, 0.001)

	entries, err := repo.GetPriceHistory(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, 1499, entries[0].Price, 0.001)
	assert.InDelta(t, 1299, entries[1].Price, 0.001)

	alert := &models.PriceAlert{ProductID: product.ID, OwnerID: "user-1", TargetPrice: 1000, NotifyEmail: "a@b.c"}
	require.NoError(t, repo.CreateAlert(ctx, alert))

	active, err := repo.ListActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Desk Lamp", active[0].Product.Title)

	require.NoError(t, repo.MarkAlertTriggered(ctx, alert.ID, time.Now()))

	active, err = repo.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = repo.GetProduct(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrProductNotFound)
	require.ErrorIs(t, repo.MarkAlertTriggered(ctx, "missing", time.Now()), repository.ErrAlertNotFound)
}
