package notifier_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/notifier"
	"github.com/Houeta/pricewatch/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

func TestTelegram_Send(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n := sampleNotification(models.EmailTypePriceDrop)
	n.ChatID = 42

	testCases := []struct {
		name        string
		n           models.Notification
		setupMocks  func(m *mocks.API)
		expectedErr error
		expectError bool
	}{
		{
			name: "Success",
			n:    n,
			setupMocks: func(m *mocks.API) {
				m.On("Send", &telebot.Chat{ID: 42}, notifier.Message(n), telebot.ModeHTML).
					Return(&telebot.Message{}, nil).Once()
			},
		},
		{
			name: "API failure",
			n:    n,
			setupMocks: func(m *mocks.API) {
				m.On("Send", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("chat not found")).Once()
			},
			expectError: true,
		},
		{
			name:        "No chat",
			n:           sampleNotification(models.EmailTypePriceDrop),
			setupMocks:  func(_ *mocks.API) {},
			expectedErr: notifier.ErrNoRecipient,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockBot := mocks.NewAPI(t)
			tc.setupMocks(mockBot)

			err := notifier.NewTelegram(logger, mockBot).Send(t.Context(), tc.n)

			if !tc.expectError {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	msg := notifier.Message(sampleNotification(models.EmailTypeConfirmation))

	assert.Contains(t, msg, "Price alert set")
	assert.Contains(t, msg, "Widget &lt;Pro&gt;")
	assert.Contains(t, msg, "Current: <b>₹2,489</b>")
	assert.Contains(t, msg, "Target: ₹1,999.50")
	assert.Contains(t, msg, "https://shop.example.com/widget")
}
