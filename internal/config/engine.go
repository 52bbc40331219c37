package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
)

// EngineConfig bundles the rule engine and indicator tunables read from
// ENGINE_CONFIG_PATH. Rule engine keys sit at the top level of the file and
// indicator settings under "indicators".
type EngineConfig struct {
	Rules      rules.Config
	Indicators indicator.Config
}

// DefaultEngineConfig returns the built-in engine constants
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rules:      rules.DefaultConfig(),
		Indicators: indicator.DefaultConfig(),
	}
}

// LoadEngine reads the engine overrides; an empty path yields the defaults
func LoadEngine(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}

	rulesCfg, err := rules.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	cfg.Rules = rulesCfg

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read engine config: %w", err)
	}
	wrapper := struct {
		Indicators indicator.Config `yaml:"indicators"`
	}{Indicators: cfg.Indicators}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return cfg, fmt.Errorf("failed to parse indicator config: %w", err)
	}
	cfg.Indicators = wrapper.Indicators

	return cfg, nil
}
