package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// EMA is an exponential moving average of closes with smoothing factor
// k = 2/(period+1), seeded with the simple mean of the first period inputs.
type EMA struct {
	period int
	k      float64

	n   int // inputs seen
	sum float64
	ema float64
}

// NewEMA creates an EMA calculator named EMA<period>
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}
	return &EMA{period: period, k: 2 / float64(period+1)}, nil
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA%d", e.period)
}

func (e *EMA) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	return e.Add(bar.Close), nil
}

// Add feeds a raw value and returns the average, or 0 while seeding.
// MACD uses it to smooth its own line.
func (e *EMA) Add(x float64) float64 {
	e.n++
	switch {
	case e.n < e.period:
		e.sum += x
		return 0
	case e.n == e.period:
		e.sum += x
		e.ema = e.sum / float64(e.period)
	default:
		e.ema += e.k * (x - e.ema)
		if !isFinite(e.ema) {
			e.ema = x
		}
	}
	return e.ema
}

func (e *EMA) Value() (float64, error) {
	if !e.IsReady() {
		return 0, fmt.Errorf("EMA not ready: need at least %d bars", e.period)
	}
	return e.ema, nil
}

func (e *EMA) Emit(set models.IndicatorSet) {
	if e.IsReady() {
		emitFinite(set, e.Name(), e.ema)
	}
}

func (e *EMA) Reset() {
	e.n, e.sum, e.ema = 0, 0, 0
}

func (e *EMA) IsReady() bool {
	return e.n >= e.period
}

func (e *EMA) WindowSize() int {
	return e.period
}

func (e *EMA) BarsProcessed() int {
	return e.n
}
