package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper stubs http.RoundTripper.
type mockRoundTripper struct {
	response *http.Response
	err      error
	request  *http.Request
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.request = req
	return m.response, m.err
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestServiceClient_Scrape(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name           string
		mockResponse   *http.Response
		mockError      error
		expectError    bool
		expectedErrMsg string
		expectSuccess  bool
		expectedResErr string
	}{
		{
			name: "Successful scrape",
			mockResponse: jsonResponse(http.StatusOK, `{"success":true,"data":{"markdown":"Price ₹2,489.00",`+
				`"metadata":{"title":"Widget - Amazon.in","ogTitle":"Widget"}}}`),
			expectSuccess: true,
		},
		{
			name:           "Service reports failure in body",
			mockResponse:   jsonResponse(http.StatusOK, `{"success":false,"error":"blocked by site"}`),
			expectSuccess:  false,
			expectedResErr: "blocked by site",
		},
		{
			name:           "Error status with error payload",
			mockResponse:   jsonResponse(http.StatusPaymentRequired, `{"success":false,"error":"Insufficient credits"}`),
			expectSuccess:  false,
			expectedResErr: "Insufficient credits",
		},
		{
			name:           "Error status without payload",
			mockResponse:   jsonResponse(http.StatusInternalServerError, `oops`),
			expectError:    true,
			expectedErrMsg: "status code error: [500]",
		},
		{
			name:           "Malformed body",
			mockResponse:   jsonResponse(http.StatusOK, `{"success":`),
			expectError:    true,
			expectedErrMsg: "failed to decode response",
		},
		{
			name:           "Network error",
			mockError:      errors.New("connection failed"),
			expectError:    true,
			expectedErrMsg: "connection failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt := &mockRoundTripper{response: tc.mockResponse, err: tc.mockError}
			c := NewServiceClient(logger, "https://scrape.example/", "secret", time.Second, 0)
			c.client = &http.Client{Transport: rt}

			res, err := c.Scrape(t.Context(), "https://shop.example/widget")

			require.NotNil(t, rt.request)
			assert.Equal(t, "https://scrape.example/v1/scrape", rt.request.URL.String())
			assert.Equal(t, "Bearer secret", rt.request.Header.Get("Authorization"))

			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectSuccess, res.Success)
			assert.Equal(t, tc.expectedResErr, res.Error)
			if tc.expectSuccess {
				require.NotNil(t, res.Data)
				assert.Equal(t, "Price ₹2,489.00", res.Data.Markdown)
				assert.Equal(t, "Widget", res.Data.Metadata["ogTitle"])
			}
		})
	}
}

func TestServiceClient_RequestBody(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt := &mockRoundTripper{response: jsonResponse(http.StatusOK, `{"success":true,"data":{"markdown":""}}`)}
	c := NewServiceClient(logger, DefaultServiceURL, "key", time.Second, 10)
	c.client = &http.Client{Transport: rt}

	_, err := c.Scrape(t.Context(), "https://shop.example/a")
	require.NoError(t, err)

	var body scrapeRequest
	require.NoError(t, json.NewDecoder(rt.request.Body).Decode(&body))
	assert.Equal(t, "https://shop.example/a", body.URL)
	assert.Equal(t, []string{"markdown"}, body.Formats)
	assert.True(t, body.OnlyMainContent)
}

func TestServiceClient_CanceledContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewServiceClient(logger, DefaultServiceURL, "key", time.Second, 0.001)
	// Drain the single burst token so the next call has to wait.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Scrape(ctx, "https://shop.example/a")

	require.ErrorContains(t, err, "rate limiter error")
}
