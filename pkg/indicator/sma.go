package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// SMA calculates the Simple Moving Average
// SMA = Sum of values over period / period
type SMA struct {
	period    int
	name      string
	values    []float64 // Rolling window
	ready     bool
	processed int
}

// NewSMA creates a new SMA calculator over closing prices
func NewSMA(period int) (*SMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("SMA period must be at least 1, got %d", period)
	}

	return &SMA{
		period: period,
		name:   fmt.Sprintf("SMA%d", period),
		values: make([]float64, 0, period),
	}, nil
}

// Name returns the indicator name
func (s *SMA) Name() string {
	return s.name
}

// Update processes a new bar and updates the SMA calculation
func (s *SMA) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	return s.Add(bar.Close), nil
}

// Add pushes a raw value into the window. Used when smoothing derived series
// such as %K; a NaN stays in the result until it leaves the window.
func (s *SMA) Add(value float64) float64 {
	s.values = append(s.values, value)
	s.processed++

	// Remove oldest if we exceed period
	if len(s.values) > s.period {
		copy(s.values, s.values[1:])
		s.values = s.values[:len(s.values)-1]
	}

	if len(s.values) >= s.period {
		s.ready = true
		return s.calculate()
	}

	return 0
}

// calculate recomputes the mean from the window
func (s *SMA) calculate() float64 {
	if len(s.values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range s.values {
		sum += v
	}

	return sum / float64(len(s.values))
}

// StdDev returns the population standard deviation of the window
func (s *SMA) StdDev() float64 {
	if !s.ready {
		return math.NaN()
	}
	mean := s.calculate()
	var sq float64
	for _, v := range s.values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(s.values)))
}

// Value returns the current SMA value
func (s *SMA) Value() (float64, error) {
	if !s.ready {
		return 0, fmt.Errorf("SMA not ready: need at least %d bars", s.period)
	}
	return s.calculate(), nil
}

// Emit writes SMA<period>
func (s *SMA) Emit(set models.IndicatorSet) {
	if s.ready {
		emitFinite(set, s.name, s.calculate())
	}
}

// Reset clears the SMA state
func (s *SMA) Reset() {
	s.values = s.values[:0]
	s.ready = false
	s.processed = 0
}

// IsReady returns true if the SMA has enough data
func (s *SMA) IsReady() bool {
	return s.ready
}

// WindowSize returns the period (number of bars required)
func (s *SMA) WindowSize() int {
	return s.period
}

// BarsProcessed returns the number of bars processed
func (s *SMA) BarsProcessed() int {
	return s.processed
}
