// Package history synthesizes price history series and reduces them to statistics.
package history

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/Houeta/pricewatch/internal/models"
)

const (
	// Days is the length of a synthesized series.
	Days = 30
	// maxVariation bounds the random deviation from the current price in either direction.
	maxVariation = 0.15
	// floorRatio is the lowest fraction of the current price a synthesized point may take.
	floorRatio = 0.7
)

// RandSource yields pseudo-random numbers in [0, 1).
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Synthesizer produces plausible price histories from a single observed price.
type Synthesizer struct {
	rnd RandSource
	now func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRandSource replaces the randomness source.
func WithRandSource(r RandSource) Option {
	return func(s *Synthesizer) { s.rnd = r }
}

// WithClock replaces the clock used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// NewSynthesizer creates a Synthesizer backed by math/rand/v2 and the wall clock.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{rnd: globalRand{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Synthesize returns Days points ordered oldest to newest, the last dated today (UTC).
// Every point is at least round(0.7*currentPrice) and the last equals currentPrice.
func (s *Synthesizer) Synthesize(currentPrice float64) []models.PricePoint {
	today := s.now().UTC()
	floor := math.Round(currentPrice * floorRatio)

	series := make([]models.PricePoint, 0, Days)
	for i := Days - 1; i >= 0; i-- {
		variation := (s.rnd.Float64() - 0.5) * 2 * maxVariation
		price := math.Max(math.Round(currentPrice*(1+variation)), floor)

		series = append(series, models.PricePoint{
			Date:  today.AddDate(0, 0, -i).Format(models.DateLayout),
			Price: price,
		})
	}

	series[len(series)-1].Price = currentPrice

	return series
}
