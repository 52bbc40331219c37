package pattern

import "math"

// Type is the kind of head-and-shoulders formation
type Type string

const (
	TypeNone    Type = "none"
	TypeRegular Type = "regular" // head above shoulders, bearish reversal
	TypeInverse Type = "inverse" // head below shoulders, bullish reversal
)

// Config holds the detector parameters
type Config struct {
	Lookback          int     `yaml:"lookback"`
	MinBars           int     `yaml:"min_bars"`
	ShoulderTolerance float64 `yaml:"shoulder_tolerance"`
	HeadMargin        float64 `yaml:"head_margin"`
}

// DefaultConfig returns the standard detector parameters
func DefaultConfig() Config {
	return Config{
		Lookback:          120,
		MinBars:           30,
		ShoulderTolerance: 0.05,
		HeadMargin:        0.03,
	}
}

// Result is the outcome of a head-and-shoulders scan.
// Positions are absolute indices into the input series.
type Result struct {
	Found      bool    `json:"found"`
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
	Positions  *[3]int `json:"positions,omitempty"`
}

// NotFound is the zero detection
func NotFound() Result {
	return Result{Type: TypeNone}
}

type peak struct {
	index int
	price float64
}

// DetectHeadAndShoulders scans the trailing window of closes for the most recent
// triple of consecutive peaks forming a regular or inverse head-and-shoulders.
// The regular formation is checked before the inverse one for each triple.
func DetectHeadAndShoulders(closes []float64, cfg Config) Result {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultConfig().Lookback
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = DefaultConfig().MinBars
	}
	if len(closes) < cfg.MinBars {
		return NotFound()
	}

	window := closes
	if len(window) > cfg.Lookback {
		window = closes[len(closes)-cfg.Lookback:]
	}
	if len(window) < cfg.MinBars {
		return NotFound()
	}
	offset := len(closes) - len(window)

	peaks := findPeaks(window)
	if len(peaks) < 3 {
		return NotFound()
	}

	for j := len(peaks) - 3; j >= 0; j-- {
		left, head, right := peaks[j], peaks[j+1], peaks[j+2]
		p1, p2, p3 := left.price, head.price, right.price

		shoulders := math.Abs(p1-p3) / math.Max(math.Max(p1, p3), 1e-9)
		if shoulders > cfg.ShoulderTolerance {
			continue
		}

		positions := &[3]int{left.index + offset, head.index + offset, right.index + offset}

		if p2 > p1 && p2 > p3 {
			overLeft := ratio(p2-p1, p1)
			overRight := ratio(p2-p3, p3)
			if overLeft >= cfg.HeadMargin || overRight >= cfg.HeadMargin {
				return Result{
					Found:      true,
					Type:       TypeRegular,
					Confidence: math.Min(1.0, (overLeft+overRight)/0.2),
					Positions:  positions,
				}
			}
		}

		if p2 < p1 && p2 < p3 {
			underLeft := ratio(p1-p2, p1)
			underRight := ratio(p3-p2, p3)
			if underLeft >= cfg.HeadMargin || underRight >= cfg.HeadMargin {
				return Result{
					Found:      true,
					Type:       TypeInverse,
					Confidence: 0.5 * math.Min(1.0, (underLeft+underRight)/0.1),
					Positions:  positions,
				}
			}
		}
	}

	return NotFound()
}

// findPeaks returns strict local maxima, i.e. points above both neighbours
func findPeaks(values []float64) []peak {
	var peaks []peak
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			peaks = append(peaks, peak{index: i, price: values[i]})
		}
	}
	return peaks
}

func ratio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}
