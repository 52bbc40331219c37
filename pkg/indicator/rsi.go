package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// RSI is Wilder's Relative Strength Index over close-to-close changes.
// Average gain and loss are seeded with a simple mean over the first
// period changes, so the first value needs period+1 bars.
type RSI struct {
	period int

	lastClose float64
	seen      int // bars consumed

	up, down wilderMean
}

// NewRSI creates an RSI calculator (typically 14)
func NewRSI(period int) (*RSI, error) {
	if period < 2 {
		return nil, fmt.Errorf("RSI period must be at least 2, got %d", period)
	}
	return &RSI{
		period: period,
		up:     wilderMean{n: period},
		down:   wilderMean{n: period},
	}, nil
}

func (r *RSI) Name() string {
	return KeyRSI
}

// Update returns the RSI after this bar, or 0 while still seeding
func (r *RSI) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	r.seen++
	if r.seen == 1 {
		r.lastClose = bar.Close
		return 0, nil
	}

	delta := bar.Close - r.lastClose
	r.lastClose = bar.Close

	r.up.add(math.Max(delta, 0))
	if !r.down.add(math.Max(-delta, 0)) {
		return 0, nil
	}
	return r.current(), nil
}

// current maps the smoothed averages to [0, 100]. A window with no losses
// reads 100, and one with no movement at all reads a neutral 50.
func (r *RSI) current() float64 {
	gain, loss := r.up.avg, r.down.avg
	switch {
	case loss == 0 && gain == 0:
		return 50
	case loss == 0:
		return 100
	}
	v := 100 * gain / (gain + loss)
	if !isFinite(v) {
		return 50
	}
	return math.Min(100, math.Max(0, v))
}

func (r *RSI) Value() (float64, error) {
	if !r.IsReady() {
		return 0, fmt.Errorf("RSI not ready: need at least %d bars", r.WindowSize())
	}
	return r.current(), nil
}

func (r *RSI) Emit(set models.IndicatorSet) {
	if r.IsReady() {
		emitFinite(set, KeyRSI, r.current())
	}
}

func (r *RSI) Reset() {
	r.seen = 0
	r.lastClose = 0
	r.up.reset()
	r.down.reset()
}

func (r *RSI) IsReady() bool {
	return r.down.seeded()
}

// WindowSize returns period + 1 bars since the first bar only anchors the
// first change
func (r *RSI) WindowSize() int {
	return r.period + 1
}

func (r *RSI) BarsProcessed() int {
	return r.seen
}
