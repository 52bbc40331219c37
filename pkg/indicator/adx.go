package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// ADX computes Wilder's Average Directional Index with DI+ and DI-.
// True range and directional movement are Wilder-smoothed over the period;
// ADX is the average of the first period DX values, then Wilder-smoothed.
type ADX struct {
	period int

	prev    models.PriceBar
	hasPrev bool
	moves   int // number of bar-to-bar moves seen

	trSum, plusSum, minusSum float64 // smoothed TR / +DM / -DM

	dxSeed  float64
	dxCount int
	adx     float64
	ready   bool

	plusDI, minusDI float64
	defined         bool // DI defined on the latest bar (non-zero true range)
}

// NewADX creates an ADX calculator (typically 14)
func NewADX(period int) (*ADX, error) {
	if period < 2 {
		return nil, fmt.Errorf("ADX period must be at least 2, got %d", period)
	}
	return &ADX{period: period}, nil
}

func (a *ADX) Name() string {
	return KeyADX
}

// Update returns the ADX value, or 0 until 2*period bars have been seen
func (a *ADX) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	if !a.hasPrev {
		a.prev = *bar
		a.hasPrev = true
		return 0, nil
	}

	tr := math.Max(bar.High-bar.Low, math.Max(math.Abs(bar.High-a.prev.Close), math.Abs(bar.Low-a.prev.Close)))
	up := bar.High - a.prev.High
	down := a.prev.Low - bar.Low

	var plusDM, minusDM float64
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	a.prev = *bar
	a.moves++

	p := float64(a.period)
	if a.moves <= a.period {
		a.trSum += tr
		a.plusSum += plusDM
		a.minusSum += minusDM
		if a.moves < a.period {
			return 0, nil
		}
	} else {
		a.trSum = a.trSum - a.trSum/p + tr
		a.plusSum = a.plusSum - a.plusSum/p + plusDM
		a.minusSum = a.minusSum - a.minusSum/p + minusDM
	}

	dx := 0.0
	a.defined = a.trSum > 0
	if a.defined {
		a.plusDI = 100 * a.plusSum / a.trSum
		a.minusDI = 100 * a.minusSum / a.trSum
		if sum := a.plusDI + a.minusDI; sum > 0 {
			dx = 100 * math.Abs(a.plusDI-a.minusDI) / sum
		}
	}

	if !a.ready {
		a.dxSeed += dx
		a.dxCount++
		if a.dxCount < a.period {
			return 0, nil
		}
		a.adx = a.dxSeed / p
		a.ready = true
		return a.adx, nil
	}

	a.adx = (a.adx*(p-1) + dx) / p
	return a.adx, nil
}

func (a *ADX) Value() (float64, error) {
	if !a.ready {
		return 0, fmt.Errorf("ADX not ready: need at least %d bars", a.WindowSize())
	}
	return a.adx, nil
}

// Emit writes ADX, DI_PLUS and DI_MINUS. Nothing is written while the
// smoothed true range is zero since the directional indicators are undefined.
func (a *ADX) Emit(set models.IndicatorSet) {
	if !a.ready || !a.defined {
		return
	}
	emitFinite(set, KeyADX, a.adx)
	emitFinite(set, KeyDIPlus, a.plusDI)
	emitFinite(set, KeyDIMinus, a.minusDI)
}

func (a *ADX) Reset() {
	*a = ADX{period: a.period}
}

func (a *ADX) IsReady() bool {
	return a.ready
}

// WindowSize returns 2 * period bars
func (a *ADX) WindowSize() int {
	return 2 * a.period
}

func (a *ADX) BarsProcessed() int {
	if !a.hasPrev {
		return 0
	}
	return a.moves + 1
}
