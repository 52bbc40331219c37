package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Bollinger computes SMA(period) ± k·σ of closing prices, σ being the
// population standard deviation of the same window.
type Bollinger struct {
	k     float64
	basis *SMA
}

// NewBollinger creates Bollinger bands (typically 20, 2)
func NewBollinger(period int, k float64) (*Bollinger, error) {
	if period < 2 {
		return nil, fmt.Errorf("bollinger period must be at least 2, got %d", period)
	}
	if k <= 0 {
		return nil, fmt.Errorf("bollinger multiplier must be positive, got %f", k)
	}
	basis, err := NewSMA(period)
	if err != nil {
		return nil, err
	}
	return &Bollinger{k: k, basis: basis}, nil
}

func (b *Bollinger) Name() string {
	return "BB"
}

// Update returns the middle band
func (b *Bollinger) Update(bar *models.PriceBar) (float64, error) {
	return b.basis.Update(bar)
}

func (b *Bollinger) Value() (float64, error) {
	return b.basis.Value()
}

// Bands returns lower, middle and upper bands
func (b *Bollinger) Bands() (lower, middle, upper float64, err error) {
	middle, err = b.basis.Value()
	if err != nil {
		return 0, 0, 0, err
	}
	width := b.k * b.basis.StdDev()
	return middle - width, middle, middle + width, nil
}

// Emit writes BBL, BBM and BBU
func (b *Bollinger) Emit(set models.IndicatorSet) {
	lower, middle, upper, err := b.Bands()
	if err != nil || !isFinite(lower) || !isFinite(upper) {
		return
	}
	set[KeyBBLower] = lower
	set[KeyBBMiddle] = middle
	set[KeyBBUpper] = upper
}

func (b *Bollinger) Reset() {
	b.basis.Reset()
}

func (b *Bollinger) IsReady() bool {
	return b.basis.IsReady()
}
