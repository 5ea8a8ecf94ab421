package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/internal/services/tracker"
	"github.com/gin-gonic/gin"
)

const internalError = "Something went wrong. Please try again."

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	log      *slog.Logger
	tracker  tracker.Interface
	notifier notifier.Notifier
}

// NewHandler creates a new HTTP handler.
func NewHandler(log *slog.Logger, trk tracker.Interface, ntf notifier.Notifier) *Handler {
	return &Handler{log: log, tracker: trk, notifier: ntf}
}

type trackRequest struct {
	URL string `json:"url" binding:"required"`
}

type trackResponse struct {
	Product   *models.ProductRecord `json:"product"`
	Persisted bool                  `json:"persisted"`
	Warnings  []string              `json:"warnings"`
}

type alertRequest struct {
	TargetPrice json.Number `json:"targetPrice" binding:"required"`
}

type alertResponse struct {
	Alert    *models.PriceAlert `json:"alert"`
	Warnings []string           `json:"warnings"`
}

// priceAlertRequest is the notification contract accepted from other services. Delivery is
// email only and always goes to the signed-in user.
type priceAlertRequest struct {
	Email        string  `json:"email"`
	ProductTitle string  `json:"productTitle"`
	ProductURL   string  `json:"productUrl"`
	CurrentPrice float64 `json:"currentPrice"`
	TargetPrice  float64 `json:"targetPrice"`
	Currency     string  `json:"currency"`
	EmailType    string  `json:"emailType"`
}

type notificationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricewatch",
	})
}

// TrackProduct scrapes a product URL and returns its record with price history.
func (h *Handler) TrackProduct(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": tracker.MsgInvalidURL})
		return
	}

	res, err := h.tracker.Track(c.Request.Context(), req.URL, currentUser(c))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if res.State == tracker.NotFound {
		msg := tracker.MsgPriceNotFound
		if len(res.Warnings) > 0 {
			msg = res.Warnings[0].Message
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, trackResponse{
		Product:   res.Product,
		Persisted: res.Persisted,
		Warnings:  warningMessages(res.Warnings),
	})
}

// ListProducts returns the products tracked by the caller.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.tracker.ListProducts(c.Request.Context(), currentUser(c))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if products == nil {
		products = []models.TrackedProduct{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns a tracked product with its stored price history.
func (h *Handler) GetProduct(c *gin.Context) {
	product, entries, err := h.tracker.GetProduct(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "history": entries})
}

// CreateAlert sets a price alert on a tracked product.
func (h *Handler) CreateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": tracker.MsgInvalidPrice})
		return
	}

	res, err := h.tracker.SetAlert(c.Request.Context(), currentUser(c), c.Param("id"), req.TargetPrice.String())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, alertResponse{Alert: res.Alert, Warnings: warningMessages(res.Warnings)})
}

// SendPriceAlert emails a price alert to the signed-in user.
func (h *Handler) SendPriceAlert(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, notificationResponse{Error: "sign in required"})
		return
	}

	var req priceAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, notificationResponse{Error: "invalid request body"})
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		c.JSON(http.StatusForbidden, notificationResponse{Error: "alerts can only be sent to your own email"})
		return
	}
	if user.Email == "" {
		c.JSON(http.StatusBadRequest, notificationResponse{Error: "no email address on this account"})
		return
	}

	n := models.Notification{
		Email:        user.Email,
		ProductTitle: req.ProductTitle,
		ProductURL:   req.ProductURL,
		CurrentPrice: req.CurrentPrice,
		TargetPrice:  req.TargetPrice,
		Currency:     req.Currency,
		EmailType:    req.EmailType,
	}
	if n.EmailType == "" {
		n.EmailType = models.EmailTypePriceDrop
	}

	if err := h.notifier.Send(c.Request.Context(), n); err != nil {
		h.log.ErrorContext(c.Request.Context(), "Failed to send price alert", "op", "http.SendPriceAlert", "error", err)
		c.JSON(http.StatusInternalServerError, notificationResponse{Error: "failed to send price alert"})
		return
	}

	c.JSON(http.StatusOK, notificationResponse{Success: true})
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := statusFor(tracker.KindOf(err))
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(c.Request.Context(), "Request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, gin.H{"error": tracker.UserMessage(err, internalError)})
}

func statusFor(kind tracker.Kind) int {
	switch kind {
	case tracker.InvalidInput, tracker.InvalidTarget:
		return http.StatusBadRequest
	case tracker.Unauthenticated:
		return http.StatusUnauthorized
	case tracker.ProductNotFound:
		return http.StatusNotFound
	case tracker.PriceNotFound:
		return http.StatusUnprocessableEntity
	case tracker.ScrapeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func warningMessages(warnings []*tracker.Error) []string {
	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		messages = append(messages, w.Message)
	}
	return messages
}
