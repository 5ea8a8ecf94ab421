package models

// Email types accepted by notifiers.
const (
	EmailTypeConfirmation = "confirmation"
	EmailTypePriceDrop    = "price_drop"
)

// Notification describes a price alert message for a single recipient.
type Notification struct {
	Email        string  `json:"email"`
	ChatID       int64   `json:"chatId,omitempty"`
	ProductTitle string  `json:"productTitle"`
	ProductURL   string  `json:"productUrl"`
	CurrentPrice float64 `json:"currentPrice"`
	TargetPrice  float64 `json:"targetPrice"`
	Currency     string  `json:"currency"`
	EmailType    string  `json:"emailType,omitempty"`
}

// IsConfirmation reports whether n confirms a newly created alert.
func (n Notification) IsConfirmation() bool {
	return n.EmailType == EmailTypeConfirmation
}
