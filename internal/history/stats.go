package history

import (
	"errors"
	"math"

	"github.com/Houeta/pricewatch/internal/models"
)

// ErrEmptySeries is returned when statistics are requested for an empty series.
var ErrEmptySeries = errors.New("price series is empty")

// CalculateStats reduces series to its lowest, highest and rounded average price.
func CalculateStats(series []models.PricePoint) (models.PriceStats, error) {
	if len(series) == 0 {
		return models.PriceStats{}, ErrEmptySeries
	}

	lowest, highest := series[0].Price, series[0].Price
	var sum float64
	for _, p := range series {
		lowest = math.Min(lowest, p.Price)
		highest = math.Max(highest, p.Price)
		sum += p.Price
	}

	// Rounding may push the mean of fractional prices past an extreme.
	average := math.Min(math.Max(math.Round(sum/float64(len(series))), lowest), highest)

	return models.PriceStats{
		LowestPrice:  lowest,
		HighestPrice: highest,
		AveragePrice: average,
	}, nil
}
