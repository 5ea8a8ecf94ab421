package models

import "time"

// PriceAlert asks for a notification once a product drops to TargetPrice or below.
type PriceAlert struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	OwnerID      string     `json:"ownerId"`
	TargetPrice  float64    `json:"targetPrice"`
	NotifyEmail  string     `json:"-"`
	NotifyChatID int64      `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	TriggeredAt  *time.Time `json:"triggeredAt,omitempty"`
}

// WatchedAlert is an untriggered alert joined with the product it watches.
type WatchedAlert struct {
	Alert   PriceAlert
	Product TrackedProduct
}

// CheckReport summarizes one price check run.
type CheckReport struct {
	Checked   int
	Updated   int
	Triggered int
	Failed    int
}
