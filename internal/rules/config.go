package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
)

// Thresholds map a total score to a decision. Bounds are inclusive.
type Thresholds struct {
	StrongBuy  int `yaml:"strong_buy"`
	Buy        int `yaml:"buy"`
	Sell       int `yaml:"sell"`
	StrongSell int `yaml:"strong_sell"`
}

// Config holds the engine constants
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`

	// LegacyScores maps action keywords (upper case) to scores
	LegacyScores map[string]int `yaml:"legacy_scores"`

	// FundamentalPrefix is prepended to fundamental names in expressions
	FundamentalPrefix string `yaml:"fundamental_prefix"`

	// FundamentalDefault replaces null or missing fundamentals
	FundamentalDefault float64 `yaml:"fundamental_default"`

	// MissingIndicatorDefault, when set, is bound for every name in
	// DefaultedIndicators that the indicator set lacks. When nil those
	// names stay unbound and rules using them do not trigger.
	MissingIndicatorDefault *float64 `yaml:"missing_indicator_default"`
	DefaultedIndicators     []string `yaml:"defaulted_indicators"`
}

// DefaultConfig returns the standard thresholds (±2 / ±4) and legacy scores
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			StrongBuy:  4,
			Buy:        2,
			Sell:       -2,
			StrongSell: -4,
		},
		LegacyScores: map[string]int{
			"BUY":     3,
			"ACHETER": 3,
			"SELL":    -3,
			"VENDRE":  -3,
			"HOLD":    0,
		},
		FundamentalPrefix:   "F_",
		FundamentalDefault:  0.0,
		DefaultedIndicators: append([]string(nil), indicator.NumericKeys...),
	}
}

// LoadConfig reads a YAML file over DefaultConfig
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read engine config: %w", err)
	}
	defaults := cfg.LegacyScores
	cfg.LegacyScores = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse engine config: %w", err)
	}
	cfg.normalize()
	for k, v := range defaults {
		if _, ok := cfg.LegacyScores[k]; !ok {
			cfg.LegacyScores[k] = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	scores := make(map[string]int, len(c.LegacyScores))
	for k, v := range c.LegacyScores {
		scores[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	c.LegacyScores = scores
}

// Validate checks that the thresholds are ordered
func (c *Config) Validate() error {
	t := c.Thresholds
	if t.StrongBuy < t.Buy {
		return fmt.Errorf("strong_buy threshold (%d) must be >= buy threshold (%d)", t.StrongBuy, t.Buy)
	}
	if t.StrongSell > t.Sell {
		return fmt.Errorf("strong_sell threshold (%d) must be <= sell threshold (%d)", t.StrongSell, t.Sell)
	}
	if t.Buy <= t.Sell {
		return fmt.Errorf("buy threshold (%d) must be above sell threshold (%d)", t.Buy, t.Sell)
	}
	if c.FundamentalPrefix == "" {
		return fmt.Errorf("fundamental prefix cannot be empty")
	}
	return nil
}
