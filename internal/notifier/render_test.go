package notifier_test

import (
	"strings"
	"testing"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification(emailType string) models.Notification {
	return models.Notification{
		Email:        "user@example.com",
		ProductTitle: "Widget <Pro>",
		ProductURL:   "https://shop.example.com/widget",
		CurrentPrice: 2489,
		TargetPrice:  1999.5,
		Currency:     "₹",
		EmailType:    emailType,
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 60)

	testCases := []struct {
		name     string
		n        models.Notification
		expected string
	}{
		{
			name:     "confirmation",
			n:        models.Notification{ProductTitle: "Widget", EmailType: models.EmailTypeConfirmation},
			expected: "🔔 Price Alert Set: Widget",
		},
		{
			name:     "price drop",
			n:        models.Notification{ProductTitle: "Widget", EmailType: models.EmailTypePriceDrop},
			expected: "🎉 Price Drop Alert: Widget",
		},
		{
			name:     "long title is truncated to 50 characters",
			n:        models.Notification{ProductTitle: long, EmailType: models.EmailTypePriceDrop},
			expected: "🎉 Price Drop Alert: " + strings.Repeat("é", 50),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, notifier.Subject(tc.n))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "₹2,489", notifier.FormatPrice("₹", 2489))
	assert.Equal(t, "$1,999.50", notifier.FormatPrice("$", 1999.5))
	assert.Equal(t, "€49", notifier.FormatPrice("€", 49))
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	t.Run("confirmation", func(t *testing.T) {
		t.Parallel()

		html, err := notifier.RenderHTML(sampleNotification(models.EmailTypeConfirmation))

		require.NoError(t, err)
		assert.Contains(t, html, "Price Alert Confirmed!")
		assert.Contains(t, html, "Current: ₹2,489")
		assert.Contains(t, html, "Alert when: ₹1,999.50")
		assert.Contains(t, html, "Widget &lt;Pro&gt;")
		assert.Contains(t, html, `href="https://shop.example.com/widget"`)
	})

	t.Run("price drop", func(t *testing.T) {
		t.Parallel()

		html, err := notifier.RenderHTML(sampleNotification(models.EmailTypePriceDrop))

		require.NoError(t, err)
		assert.Contains(t, html, "Price Drop Alert!")
		assert.Contains(t, html, "Your target: ₹1,999.50")
		assert.NotContains(t, html, "Alert when")
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", notifier.Truncate("abc", 5))
	assert.Equal(t, "ab", notifier.Truncate("abc", 2))
	assert.Equal(t, "₹₹", notifier.Truncate("₹₹₹", 2))
}
