package indicator

import (
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Calculator is the interface for streaming technical indicators.
// Bars are fed in ascending order; a calculator that has not seen enough
// bars reports IsReady() == false and contributes nothing to an IndicatorSet.
type Calculator interface {
	// Name returns the unique name of this indicator (e.g., "RSI", "SMA20")
	Name() string

	// Update processes a new bar and updates the indicator state
	// Returns the new primary value, or 0 if not enough data
	Update(bar *models.PriceBar) (float64, error)

	// Value returns the current primary value
	// Returns 0 and error if not enough data has been processed
	Value() (float64, error)

	// Reset clears the indicator state
	Reset()

	// IsReady returns true if the indicator has enough data to produce a valid value
	IsReady() bool

	// Emit writes the indicator's outputs into set. Calculators that are not
	// ready, or whose current value is undefined, write nothing.
	Emit(set models.IndicatorSet)
}

// WindowedCalculator extends Calculator for indicators that require a window of bars
type WindowedCalculator interface {
	Calculator

	// WindowSize returns the number of bars required for this indicator
	WindowSize() int

	// BarsProcessed returns the number of bars processed so far
	BarsProcessed() int
}

// emitFinite stores v under key unless it is NaN or infinite
func emitFinite(set models.IndicatorSet, key string, v float64) {
	if isFinite(v) {
		set[key] = v
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
