package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// Stochastic is the slow stochastic oscillator:
// raw %K = 100 * (close - lowest low) / (highest high - lowest low) over kPeriod,
// STOCH_K = SMA(raw %K, smoothK), STOCH_D = SMA(STOCH_K, dPeriod).
// A bar whose range is zero yields an undefined raw %K, which keeps both
// outputs undefined until it leaves the smoothing windows.
type Stochastic struct {
	kPeriod   int
	highs     []float64
	lows      []float64
	smoothK   *SMA
	smoothD   *SMA
	processed int
}

// NewStochastic creates a stochastic oscillator (typically 14, 3, 3)
func NewStochastic(kPeriod, smoothK, dPeriod int) (*Stochastic, error) {
	if kPeriod < 1 {
		return nil, fmt.Errorf("stochastic period must be at least 1, got %d", kPeriod)
	}
	k, err := NewSMA(smoothK)
	if err != nil {
		return nil, fmt.Errorf("stochastic %%K smoothing: %w", err)
	}
	d, err := NewSMA(dPeriod)
	if err != nil {
		return nil, fmt.Errorf("stochastic %%D smoothing: %w", err)
	}
	return &Stochastic{
		kPeriod: kPeriod,
		highs:   make([]float64, 0, kPeriod),
		lows:    make([]float64, 0, kPeriod),
		smoothK: k,
		smoothD: d,
	}, nil
}

func (s *Stochastic) Name() string {
	return "STOCH"
}

// Update returns the smoothed %K
func (s *Stochastic) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	s.processed++

	s.highs = append(s.highs, bar.High)
	s.lows = append(s.lows, bar.Low)
	if len(s.highs) > s.kPeriod {
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
	}
	if len(s.highs) < s.kPeriod {
		return 0, nil
	}

	highest, lowest := s.highs[0], s.lows[0]
	for i := 1; i < len(s.highs); i++ {
		highest = math.Max(highest, s.highs[i])
		lowest = math.Min(lowest, s.lows[i])
	}

	raw := math.NaN()
	if rng := highest - lowest; rng > 0 {
		raw = 100 * (bar.Close - lowest) / rng
	}

	k := s.smoothK.Add(raw)
	if s.smoothK.IsReady() {
		s.smoothD.Add(k)
	}
	return k, nil
}

func (s *Stochastic) Value() (float64, error) {
	return s.smoothK.Value()
}

// Emit writes STOCH_K and STOCH_D
func (s *Stochastic) Emit(set models.IndicatorSet) {
	if !s.smoothD.IsReady() {
		return
	}
	k, _ := s.smoothK.Value()
	d, _ := s.smoothD.Value()
	if !isFinite(k) || !isFinite(d) {
		return
	}
	set[KeyStochK] = k
	set[KeyStochD] = d
}

func (s *Stochastic) Reset() {
	s.highs = s.highs[:0]
	s.lows = s.lows[:0]
	s.smoothK.Reset()
	s.smoothD.Reset()
	s.processed = 0
}

func (s *Stochastic) IsReady() bool {
	return s.smoothD.IsReady()
}

// WindowSize returns kPeriod + smoothK + dPeriod - 2
func (s *Stochastic) WindowSize() int {
	return s.kPeriod + s.smoothK.WindowSize() + s.smoothD.WindowSize() - 2
}

func (s *Stochastic) BarsProcessed() int {
	return s.processed
}
