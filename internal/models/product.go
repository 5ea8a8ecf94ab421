package models

import (
	"math"
	"time"
)

// DateLayout is the day-precision ISO layout used for price history dates.
const DateLayout = "2006-01-02"

// goodDealMargin is how far above the historical low a price may sit and still count as a deal.
const goodDealMargin = 1.05

// ParsedProduct is the structured result of extracting a scraped product page.
type ParsedProduct struct {
	Title        string
	CurrentPrice float64
	Currency     string
}

// PricePoint is a single day in a price history series.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// PriceStats are the aggregates derived from a price history series.
type PriceStats struct {
	LowestPrice  float64 `json:"lowestPrice"`
	HighestPrice float64 `json:"highestPrice"`
	AveragePrice float64 `json:"averagePrice"`
}

// TrackedProduct is a product saved for a user.
type TrackedProduct struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	CurrentPrice float64   `json:"currentPrice"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryEntry is a persisted price observation.
type HistoryEntry struct {
	ProductID  string    `json:"productId"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ProductRecord is the assembled product handed to presentation surfaces.
// ID is empty when the record was not persisted.
type ProductRecord struct {
	ID           string       `json:"id,omitempty"`
	Title        string       `json:"title"`
	CurrentPrice float64      `json:"currentPrice"`
	Currency     string       `json:"currency"`
	URL          string       `json:"url"`
	PriceHistory []PricePoint `json:"priceHistory"`
	PriceStats

	IsGoodDeal         bool    `json:"isGoodDeal"`
	PriceChangePercent float64 `json:"priceChangePercent"`
}

// NewProductRecord assembles a presentation record and derives its deal indicators.
func NewProductRecord(url string, parsed ParsedProduct, series []PricePoint, stats PriceStats) *ProductRecord {
	rec := &ProductRecord{
		Title:        parsed.Title,
		CurrentPrice: parsed.CurrentPrice,
		Currency:     parsed.Currency,
		URL:          url,
		PriceHistory: series,
		PriceStats:   stats,
	}
	rec.IsGoodDeal = IsGoodDeal(rec.CurrentPrice, rec.LowestPrice)
	rec.PriceChangePercent = PriceChangePercent(rec.CurrentPrice, rec.AveragePrice)

	return rec
}

// IsGoodDeal reports whether current sits within 5% above the historical low.
func IsGoodDeal(current, lowest float64) bool {
	return current <= lowest*goodDealMargin
}

// PriceChangePercent is the change of current against average, rounded to one decimal.
func PriceChangePercent(current, average float64) float64 {
	if average == 0 {
		return 0
	}
	return math.Round((current-average)/average*1000) / 10
}
