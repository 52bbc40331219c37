package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/pattern"
)

// Standard periods
const (
	RSIPeriod        = 14
	BollingerPeriod  = 20
	BollingerK       = 2.0
	StochasticPeriod = 14
	StochasticSmooth = 3
	SMAShortPeriod   = 20
	SMALongPeriod    = 50
	EMAFastPeriod    = 12
	EMASlowPeriod    = 26
	MACDSignalPeriod = 9
	ADXPeriod        = 14
)

// periods sizes the calculators of one registry
type periods struct {
	smaShort, smaLong  int
	emaFast, emaSlow   int
	macdSignal         int
	rsi, adx           int
	bollinger          int
	bollingerK         float64
	stoch, stochSmooth int
}

var standardPeriods = periods{
	smaShort:    SMAShortPeriod,
	smaLong:     SMALongPeriod,
	emaFast:     EMAFastPeriod,
	emaSlow:     EMASlowPeriod,
	macdSignal:  MACDSignalPeriod,
	rsi:         RSIPeriod,
	adx:         ADXPeriod,
	bollinger:   BollingerPeriod,
	bollingerK:  BollingerK,
	stoch:       StochasticPeriod,
	stochSmooth: StochasticSmooth,
}

// Config holds the tunable parts of indicator computation
type Config struct {
	Trend   TrendConfig    `yaml:"trend"`
	Pattern pattern.Config `yaml:"head_and_shoulders"`
}

// DefaultConfig returns the standard trend and pattern parameters
func DefaultConfig() Config {
	return Config{
		Trend:   DefaultTrendConfig(),
		Pattern: pattern.DefaultConfig(),
	}
}

// Computer turns a price series into an IndicatorSet. It holds no
// per-series state and is safe for concurrent use.
type Computer struct {
	cfg Config
}

// NewComputer creates a computer with the given configuration
func NewComputer(cfg Config) *Computer {
	return &Computer{cfg: cfg}
}

// Compute is a convenience wrapper using DefaultConfig
func Compute(series *models.PriceSeries) (models.IndicatorSet, error) {
	return NewComputer(DefaultConfig()).Compute(series)
}

// newRegistry builds a fresh set of calculators for one series
func newRegistry(p periods) (*Registry, error) {
	reg := NewRegistry()

	sma20, err := NewSMA(p.smaShort)
	if err != nil {
		return nil, err
	}
	sma50, err := NewSMA(p.smaLong)
	if err != nil {
		return nil, err
	}
	ema12, err := NewEMA(p.emaFast)
	if err != nil {
		return nil, err
	}
	ema26, err := NewEMA(p.emaSlow)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRSI(p.rsi)
	if err != nil {
		return nil, err
	}
	bb, err := NewBollinger(p.bollinger, p.bollingerK)
	if err != nil {
		return nil, err
	}
	stoch, err := NewStochastic(p.stoch, p.stochSmooth, p.stochSmooth)
	if err != nil {
		return nil, err
	}
	macd, err := NewMACD(p.emaFast, p.emaSlow, p.macdSignal)
	if err != nil {
		return nil, err
	}
	adx, err := NewADX(p.adx)
	if err != nil {
		return nil, err
	}

	for _, calc := range []Calculator{sma20, sma50, ema12, ema26, rsi, bb, stoch, macd, adx, NewCandles()} {
		if err := reg.Register(calc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Compute feeds every bar of series through the calculators and assembles
// the IndicatorSet at the last bar. Indicators without enough input are
// omitted. Close, trend and the head-and-shoulders keys are always present.
func (c *Computer) Compute(series *models.PriceSeries) (models.IndicatorSet, error) {
	if series.Len() == 0 {
		return nil, models.ErrNoData
	}

	reg, err := newRegistry(standardPeriods)
	if err != nil {
		return nil, fmt.Errorf("failed to build indicators: %w", err)
	}
	for i := range series.Bars {
		if err := reg.Update(&series.Bars[i]); err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
	}

	set := make(models.IndicatorSet)
	reg.Emit(set)

	last := series.Last()
	set[KeyClose] = last.Close

	upper, okU := set.Float(KeyBBUpper)
	lower, okL := set.Float(KeyBBLower)
	if okU && okL && last.Close != 0 {
		emitFinite(set, KeyBBWidthPct, (upper-lower)/last.Close)
	}

	set[KeyTrend] = ClassifyTrend(set, c.cfg.Trend)

	hs := pattern.DetectHeadAndShoulders(series.Closes(), c.cfg.Pattern)
	set[KeyHSFound] = hs.Found
	set[KeyHSType] = string(hs.Type)
	set[KeyHSConfidence] = hs.Confidence
	if hs.Found && hs.Positions != nil {
		set[KeyHSLeft] = float64(hs.Positions[0])
		set[KeyHSHead] = float64(hs.Positions[1])
		set[KeyHSRight] = float64(hs.Positions[2])
	}

	return set, nil
}
