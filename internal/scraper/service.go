package scraper

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
	"golang.org/x/time/rate"
)

// DefaultServiceURL is the base URL of the hosted scraping service.
const DefaultServiceURL = "https://api.firecrawl.dev"

const maxErrorBody = 4 << 10

// ServiceClient delegates scraping to a Firecrawl-compatible HTTP API, which renders the page
// remotely and returns markdown plus metadata.
type ServiceClient struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewServiceClient creates a client allowing at most ratePerSec requests per second.
func NewServiceClient(
	log *slog.Logger,
	baseURL, apiKey string,
	timeout time.Duration,
	ratePerSec float64,
) *ServiceClient {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &ServiceClient{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// Scrape asks the service to scrape url. Transport failures are returned as errors;
// failures reported by the service come back as an unsuccessful result.
func (s *ServiceClient) Scrape(ctx context.Context, url string) (*models.ScrapeResult, error) {
	const opn = "scraper.ServiceClient.Scrape"
	log := s.log.With("op", opn, "url", url)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter error: %w", opn, err)
	}

	payload, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}, OnlyMainContent: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", opn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", opn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to request scrape service: %w", opn, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		log.WarnContext(ctx, "Scrape service returned an error", "status code", res.StatusCode)

		var failed models.ScrapeResult
		if json.Unmarshal(body, &failed) == nil && failed.Error != "" {
			return &models.ScrapeResult{Success: false, Error: failed.Error}, nil
		}
		return nil, fmt.Errorf("%s: status code error: [%d] %s", opn, res.StatusCode, res.Status)
	}

	var result models.ScrapeResult
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", opn, err)
	}

	log.InfoContext(ctx, "Successfully received scrape response", "success", result.Success)

	return &result, nil
}
