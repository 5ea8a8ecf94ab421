package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
)

// DefaultEmailURL is the base URL of the Resend-compatible email API.
const DefaultEmailURL = "https://api.resend.com"

// DefaultSender is used when no sender address is configured.
const DefaultSender = "Price Tracker <onboarding@resend.dev>"

// EmailClient sends HTML emails through a Resend-compatible HTTP API.
type EmailClient struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
	from    string
}

// NewEmailClient creates an email client. Empty baseURL and from fall back to defaults.
func NewEmailClient(log *slog.Logger, baseURL, apiKey, from string, timeout time.Duration) *EmailClient {
	if baseURL == "" {
		baseURL = DefaultEmailURL
	}
	if from == "" {
		from = DefaultSender
	}

	return &EmailClient{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send renders n and posts it to the email API.
func (c *EmailClient) Send(ctx context.Context, n models.Notification) error {
	const opn = "notifier.EmailClient.Send"
	log := c.log.With("op", opn, "type", n.EmailType)

	if n.Email == "" {
		return fmt.Errorf("%s: %w", opn, ErrNoRecipient)
	}

	html, err := RenderHTML(n)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	payload, err := json.Marshal(emailRequest{
		From:    c.from,
		To:      []string{n.Email},
		Subject: Subject(n),
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", opn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", opn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: failed to send email: %w", opn, err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return fmt.Errorf("%s: status code error: [%d] %s", opn, res.StatusCode, strings.TrimSpace(string(body)))
	}

	log.InfoContext(ctx, "Email sent")

	return nil
}
