package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Houeta/pricewatch/internal/config"
	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/services/tracker"
	"github.com/Houeta/pricewatch/test/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests.
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func setupTestRouter(t *testing.T) (*gin.Engine, *mocks.Tracker, *mocks.Notifier) {
	t.Helper()

	trk := mocks.NewTracker(t)
	ntf := mocks.NewNotifier(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.HTTP{AllowedOrigins: []string{"http://localhost:*"}}
	router := SetupRouter("test", cfg, logger, NewHandler(logger, trk, ntf))

	return router, trk, ntf
}

func doRequest(router *gin.Engine, method, path, body string, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(HeaderUserID, user.ID)
		req.Header.Set(HeaderUserEmail, user.Email)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestTrackProduct(t *testing.T) {
	const productURL = "https://shop.example.com/widget"
	user := &models.User{ID: "user-1", Email: "user@example.com"}

	record := &models.ProductRecord{
		ID: "prod-1", Title: "Widget", CurrentPrice: 2489, Currency: "₹", URL: productURL,
		PriceHistory: []models.PricePoint{{Date: "2025-03-10", Price: 2489}},
		PriceStats:   models.PriceStats{LowestPrice: 2489, HighestPrice: 2489, AveragePrice: 2489},
		IsGoodDeal:   true,
	}

	testCases := []struct {
		name           string
		body           string
		user           *models.User
		setupMocks     func(m *mocks.Tracker)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Malformed body",
			body:           `{"link":"x"}`,
			setupMocks:     func(_ *mocks.Tracker) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  tracker.MsgInvalidURL,
		},
		{
			name: "Invalid URL",
			body: `{"url":"nope"}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("Track", mock.Anything, "nope", (*models.User)(nil)).
					Return(nil, &tracker.Error{Kind: tracker.InvalidInput, Message: tracker.MsgInvalidURL}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  tracker.MsgInvalidURL,
		},
		{
			name: "Scrape failed",
			body: `{"url":"` + productURL + `"}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("Track", mock.Anything, productURL, (*models.User)(nil)).
					Return(nil, &tracker.Error{Kind: tracker.ScrapeFailed, Message: tracker.MsgScrapeFailed}).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expectedError:  tracker.MsgScrapeFailed,
		},
		{
			name: "Price not found",
			body: `{"url":"` + productURL + `"}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("Track", mock.Anything, productURL, (*models.User)(nil)).Return(&tracker.Result{
					State:    tracker.NotFound,
					Warnings: []*tracker.Error{{Kind: tracker.PriceNotFound, Message: tracker.MsgPriceNotFound}},
				}, nil).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  tracker.MsgPriceNotFound,
		},
		{
			name: "Unexpected error",
			body: `{"url":"` + productURL + `"}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("Track", mock.Anything, productURL, (*models.User)(nil)).Return(nil, errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  internalError,
		},
		{
			name: "Tracked and persisted",
			body: `{"url":"` + productURL + `"}`,
			user: user,
			setupMocks: func(m *mocks.Tracker) {
				m.On("Track", mock.Anything, productURL, user).Return(&tracker.Result{
					State: tracker.Presented, Product: record, Persisted: true,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, trk, _ := setupTestRouter(t)
			tc.setupMocks(trk)

			w := doRequest(router, http.MethodPost, "/api/v1/products/track", tc.body, tc.user)

			assert.Equal(t, tc.expectedStatus, w.Code)
			body := decode(t, w)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, body["error"])
				return
			}

			assert.Equal(t, true, body["persisted"])
			assert.Equal(t, []any{}, body["warnings"])
			product := body["product"].(map[string]any)
			assert.Equal(t, "prod-1", product["id"])
			assert.Equal(t, "Widget", product["title"])
			assert.InDelta(t, 2489.0, product["lowestPrice"], 0)
			assert.Equal(t, true, product["isGoodDeal"])
			assert.Len(t, product["priceHistory"], 1)
		})
	}
}

func TestListProducts(t *testing.T) {
	user := &models.User{ID: "user-1"}

	t.Run("anonymous", func(t *testing.T) {
		router, trk, _ := setupTestRouter(t)
		trk.On("ListProducts", mock.Anything, (*models.User)(nil)).
			Return(nil, &tracker.Error{Kind: tracker.Unauthenticated, Message: "Please sign in."}).Once()

		w := doRequest(router, http.MethodGet, "/api/v1/products", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty list", func(t *testing.T) {
		router, trk, _ := setupTestRouter(t)
		trk.On("ListProducts", mock.Anything, mock.MatchedBy(func(u *models.User) bool { return u.ID == "user-1" })).
			Return(nil, nil).Once()

		w := doRequest(router, http.MethodGet, "/api/v1/products", "", user)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, decode(t, w)["products"])
	})
}

func TestGetProduct(t *testing.T) {
	user := &models.User{ID: "user-1"}

	t.Run("not found", func(t *testing.T) {
		router, trk, _ := setupTestRouter(t)
		trk.On("GetProduct", mock.Anything, mock.Anything, "missing").
			Return(nil, nil, &tracker.Error{Kind: tracker.ProductNotFound, Message: tracker.MsgProductNotFound}).Once()

		w := doRequest(router, http.MethodGet, "/api/v1/products/missing", "", user)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, tracker.MsgProductNotFound, decode(t, w)["error"])
	})

	t.Run("found", func(t *testing.T) {
		router, trk, _ := setupTestRouter(t)
		trk.On("GetProduct", mock.Anything, mock.Anything, "prod-1").Return(
			&models.TrackedProduct{ID: "prod-1", Title: "Widget"},
			[]models.HistoryEntry{{ProductID: "prod-1", Price: 2489}},
			nil,
		).Once()

		w := doRequest(router, http.MethodGet, "/api/v1/products/prod-1", "", user)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Widget", body["product"].(map[string]any)["title"])
		assert.Len(t, body["history"], 1)
	})
}

func TestCreateAlert(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "user@example.com"}

	testCases := []struct {
		name           string
		body           string
		setupMocks     func(m *mocks.Tracker)
		expectedStatus int
	}{
		{
			name:           "Missing target",
			body:           `{}`,
			setupMocks:     func(_ *mocks.Tracker) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Target too high",
			body: `{"targetPrice": 5000}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("SetAlert", mock.Anything, mock.Anything, "prod-1", "5000").
					Return(nil, &tracker.Error{Kind: tracker.InvalidTarget, Message: tracker.MsgTargetTooHigh}).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Created from string target",
			body: `{"targetPrice": "1999.5"}`,
			setupMocks: func(m *mocks.Tracker) {
				m.On("SetAlert", mock.Anything, mock.Anything, "prod-1", "1999.5").Return(&tracker.AlertResult{
					Alert:    &models.PriceAlert{ID: "alert-1", ProductID: "prod-1", TargetPrice: 1999.5},
					Product:  &models.TrackedProduct{ID: "prod-1"},
					Warnings: []*tracker.Error{{Kind: tracker.NotificationFailed, Message: tracker.MsgConfirmationFailed}},
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, trk, _ := setupTestRouter(t)
			tc.setupMocks(trk)

			w := doRequest(router, http.MethodPost, "/api/v1/products/prod-1/alerts", tc.body, user)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusCreated {
				body := decode(t, w)
				assert.Equal(t, "alert-1", body["alert"].(map[string]any)["id"])
				assert.Equal(t, []any{tracker.MsgConfirmationFailed}, body["warnings"])
			}
		})
	}
}

func TestSendPriceAlert(t *testing.T) {
	const path = "/api/v1/notifications/price-alert"
	user := &models.User{ID: "user-1", Email: "user@example.com"}

	t.Run("defaults to price drop", func(t *testing.T) {
		router, _, ntf := setupTestRouter(t)
		ntf.On("Send", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.Email == "user@example.com" && n.EmailType == models.EmailTypePriceDrop && n.TargetPrice == 2000
		})).Return(nil).Once()

		body := `{"email":"user@example.com","productTitle":"Widget","productUrl":"https://x","currentPrice":1900,` +
			`"targetPrice":2000,"currency":"₹"}`
		w := doRequest(router, http.MethodPost, path, body, user)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"success": true}, decode(t, w))
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		router, _, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, path, `{"email":"victim@example.com","chatId":42}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, false, decode(t, w)["success"])
	})

	t.Run("other recipient is rejected", func(t *testing.T) {
		router, _, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, path, `{"email":"victim@example.com"}`, user)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("chat id in body is ignored", func(t *testing.T) {
		router, _, ntf := setupTestRouter(t)
		ntf.On("Send", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.ChatID == 0 && n.Email == "user@example.com"
		})).Return(nil).Once()

		w := doRequest(router, http.MethodPost, path, `{"chatId":42,"productTitle":"Widget"}`, user)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("account without email", func(t *testing.T) {
		router, _, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, path, `{}`, &models.User{ID: "tg:7"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delivery failure", func(t *testing.T) {
		router, _, ntf := setupTestRouter(t)
		ntf.On("Send", mock.Anything, mock.Anything).Return(errors.New("dial tcp 10.0.0.1:443: refused")).Once()

		w := doRequest(router, http.MethodPost, path, `{"email":"user@example.com","emailType":"confirmation"}`, user)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "failed to send price alert", body["error"])
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(tracker.InvalidTarget))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(tracker.PriceNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(tracker.PersistenceFailed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(tracker.KindUnknown))
}
