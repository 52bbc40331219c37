package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// MACD is EMA(fast) - EMA(slow) of closing prices with an EMA(signal) of that line.
// The signal EMA starts at the first bar where both averages exist.
type MACD struct {
	fast    *EMA
	slow    *EMA
	signal  *EMA
	line    float64
	hasLine bool
}

// NewMACD creates a MACD calculator (typically 12, 26, 9)
func NewMACD(fast, slow, signal int) (*MACD, error) {
	if fast >= slow {
		return nil, fmt.Errorf("MACD fast period (%d) must be below slow period (%d)", fast, slow)
	}
	f, err := NewEMA(fast)
	if err != nil {
		return nil, err
	}
	s, err := NewEMA(slow)
	if err != nil {
		return nil, err
	}
	sig, err := NewEMA(signal)
	if err != nil {
		return nil, err
	}
	return &MACD{fast: f, slow: s, signal: sig}, nil
}

func (m *MACD) Name() string {
	return KeyMACD
}

// Update returns the MACD line
func (m *MACD) Update(bar *models.PriceBar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	fast := m.fast.Add(bar.Close)
	slow := m.slow.Add(bar.Close)
	if !m.fast.IsReady() || !m.slow.IsReady() {
		return 0, nil
	}
	m.line = fast - slow
	m.hasLine = true
	m.signal.Add(m.line)
	return m.line, nil
}

func (m *MACD) Value() (float64, error) {
	if !m.hasLine {
		return 0, fmt.Errorf("MACD not ready: need at least %d bars", m.slow.WindowSize())
	}
	return m.line, nil
}

// Emit writes MACD, and MACD_SIGNAL / MACD_HIST once the signal line is seeded
func (m *MACD) Emit(set models.IndicatorSet) {
	if !m.hasLine {
		return
	}
	emitFinite(set, KeyMACD, m.line)
	if sig, err := m.signal.Value(); err == nil {
		emitFinite(set, KeyMACDSignal, sig)
		emitFinite(set, KeyMACDHist, m.line-sig)
	}
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = 0
	m.hasLine = false
}

func (m *MACD) IsReady() bool {
	return m.hasLine
}
