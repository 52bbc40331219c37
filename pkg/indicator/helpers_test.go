package indicator

import (
	"math"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

var baseTime = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// closeBar builds a daily bar whose open equals close, with a one point
// range above and below
func closeBar(i int, c float64) models.PriceBar {
	return models.PriceBar{
		Timestamp: baseTime.AddDate(0, 0, i),
		Open:      c,
		High:      c + 1,
		Low:       c - 1,
		Close:     c,
		Volume:    1000,
	}
}

func seriesFromCloses(closes []float64) *models.PriceSeries {
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = closeBar(i, c)
	}
	return &models.PriceSeries{Symbol: "TEST", Bars: bars}
}

func flatBars(n int, price float64) *models.PriceSeries {
	bars := make([]models.PriceBar, n)
	for i := range bars {
		bars[i] = models.PriceBar{
			Timestamp: baseTime.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return &models.PriceSeries{Symbol: "FLAT", Bars: bars}
}

func flatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func risingCloses(n int, start float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)
	}
	return closes
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
