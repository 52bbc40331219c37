package indicator

import "github.com/mohamedkhairy/stock-advisor/internal/models"

// TrendConfig holds the trend classification thresholds
type TrendConfig struct {
	Threshold float64 `yaml:"threshold"`  // relative SMA20/SMA50 gap
	StrongADX float64 `yaml:"strong_adx"` // ADX level for a "(strong)" suffix
}

// DefaultTrendConfig returns 0.5% and ADX 25
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{Threshold: 0.005, StrongADX: 25}
}

// ClassifyTrend labels the trend from the SMA20/SMA50 gap relative to SMA20
func ClassifyTrend(set models.IndicatorSet, cfg TrendConfig) string {
	sma20, ok20 := set.Float(KeySMA20)
	sma50, ok50 := set.Float(KeySMA50)
	if !ok20 || !ok50 {
		return TrendUnknown
	}

	pct := 0.0
	if sma20 != 0 {
		pct = (sma20 - sma50) / sma20
	}
	adx, ok := set.Float(KeyADX)
	strong := ok && adx >= cfg.StrongADX

	label := TrendSideways
	switch {
	case pct > cfg.Threshold:
		label = TrendUp
	case pct < -cfg.Threshold:
		label = TrendDown
	default:
		return label
	}
	if strong {
		label += strongSuffix
	}
	return label
}
