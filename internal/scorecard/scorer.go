package scorecard

import (
	"math"
	"strings"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
)

// Neutral is the sub-score given when a scorer's inputs are missing
const Neutral = 3

// Scorer rates one aspect of an IndicatorSet on a 0..5 scale
type Scorer interface {
	// Name returns the scorecard entry name (e.g., "RSI", "TREND")
	Name() string

	// Score rates the set, falling back to Neutral when inputs are missing
	Score(set models.IndicatorSet) int

	// Dependencies returns the indicator keys this scorer reads
	Dependencies() []string
}

// funcScorer adapts a plain function to Scorer
type funcScorer struct {
	name string
	deps []string
	fn   func(set models.IndicatorSet) int
}

func (s *funcScorer) Name() string                      { return s.name }
func (s *funcScorer) Dependencies() []string            { return s.deps }
func (s *funcScorer) Score(set models.IndicatorSet) int { return s.fn(set) }

// NewScorer builds a Scorer from a function
func NewScorer(name string, deps []string, fn func(set models.IndicatorSet) int) Scorer {
	return &funcScorer{name: name, deps: deps, fn: fn}
}

// band returns scores[i] for the first bound with v <= bound (v < bound
// when atMost is false), or last when v is beyond every bound
func band(v float64, bounds []float64, scores []int, last int, atMost bool) int {
	for i, b := range bounds {
		if (atMost && v <= b) || (!atMost && v < b) {
			return scores[i]
		}
	}
	return last
}

func macdScorer() Scorer {
	return NewScorer("MACD", []string{indicator.KeyMACD, indicator.KeyMACDSignal}, func(set models.IndicatorSet) int {
		macd, ok1 := set.Float(indicator.KeyMACD)
		signal, ok2 := set.Float(indicator.KeyMACDSignal)
		if !ok1 || !ok2 {
			return Neutral
		}
		diff := macd - signal
		switch {
		case diff > 0 && macd > 0:
			return 5
		case diff > 0:
			return 4
		case math.Abs(diff) < 1e-8:
			return 3
		case diff < 0 && macd < 0:
			return 1
		default:
			return 2
		}
	})
}

func rsiScorer() Scorer {
	return NewScorer("RSI", []string{indicator.KeyRSI}, func(set models.IndicatorSet) int {
		rsi, ok := set.Float(indicator.KeyRSI)
		if !ok {
			return Neutral
		}
		return band(rsi, []float64{30, 40, 60, 70}, []int{5, 4, 3, 2}, 1, true)
	})
}

func adxScorer() Scorer {
	return NewScorer("ADX", []string{indicator.KeyADX}, func(set models.IndicatorSet) int {
		adx, ok := set.Float(indicator.KeyADX)
		if !ok {
			return Neutral
		}
		switch {
		case adx >= 25:
			return 5
		case adx >= 20:
			return 4
		case adx >= 15:
			return 3
		case adx >= 10:
			return 2
		default:
			return 1
		}
	})
}

func trendScorer() Scorer {
	return NewScorer("TREND", []string{indicator.KeyTrend}, func(set models.IndicatorSet) int {
		trend, ok := set.String(indicator.KeyTrend)
		if !ok {
			return Neutral
		}
		switch {
		case strings.Contains(trend, "Up (strong)"):
			return 5
		case strings.Contains(trend, indicator.TrendUp):
			return 4
		case strings.Contains(trend, indicator.TrendDown) && strings.Contains(trend, "strong"):
			return 1
		case strings.Contains(trend, indicator.TrendDown):
			return 2
		default:
			return Neutral
		}
	})
}

// hnsScorer rates a detected head-and-shoulders as a warning: the more
// confident the detection, the lower the score
func hnsScorer() Scorer {
	return NewScorer("HNS", []string{indicator.KeyHSFound, indicator.KeyHSConfidence}, func(set models.IndicatorSet) int {
		found, _ := set.Bool(indicator.KeyHSFound)
		if !found {
			return 5
		}
		conf, _ := set.Float(indicator.KeyHSConfidence)
		switch {
		case conf >= 0.7:
			return 1
		case conf >= 0.4:
			return 2
		default:
			return 3
		}
	})
}

func stochScorer() Scorer {
	return NewScorer("STOCH", []string{indicator.KeyStochK, indicator.KeyStochD}, func(set models.IndicatorSet) int {
		k, ok := set.Float(indicator.KeyStochK)
		if !ok {
			return Neutral
		}
		score := band(k, []float64{20, 40, 60, 80}, []int{5, 4, 3, 2}, 1, true)
		if d, ok := set.Float(indicator.KeyStochD); ok && k > d && score < 5 {
			score++
		}
		return score
	})
}

func bbScorer() Scorer {
	return NewScorer("BB", []string{indicator.KeyBBWidthPct}, func(set models.IndicatorSet) int {
		width, ok := set.Float(indicator.KeyBBWidthPct)
		if !ok {
			return Neutral
		}
		return band(width, []float64{0.03, 0.06, 0.09, 0.12}, []int{5, 4, 3, 2}, 1, false)
	})
}

func smaScorer() Scorer {
	return NewScorer("SMA", []string{indicator.KeySMA20, indicator.KeySMA50}, func(set models.IndicatorSet) int {
		sma20, ok1 := set.Float(indicator.KeySMA20)
		sma50, ok2 := set.Float(indicator.KeySMA50)
		if !ok1 || !ok2 {
			return Neutral
		}
		if sma20 > sma50 {
			return 5
		}
		return 2
	})
}

func candleScorer() Scorer {
	deps := []string{indicator.KeyBullEngulf, indicator.KeyHammer, indicator.KeyDoji, indicator.KeyBearEngulf}
	return NewScorer("CANDLE", deps, func(set models.IndicatorSet) int {
		flag := func(key string) bool {
			v, _ := set.Bool(key)
			return v
		}
		switch {
		case flag(indicator.KeyBullEngulf) || flag(indicator.KeyHammer):
			return 5
		case flag(indicator.KeyDoji):
			return 3
		case flag(indicator.KeyBearEngulf):
			return 1
		default:
			return Neutral
		}
	})
}
