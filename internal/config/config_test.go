package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("WATCHLIST", "")
	t.Setenv("SCHEDULER_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "60d", cfg.Data.Period)
	assert.Equal(t, "1d", cfg.Data.Interval)
	assert.Equal(t, 2.0, cfg.Data.RateLimitRPS)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("WATCHLIST", "aapl, msft,,TSLA ")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("YAHOO_RATE_LIMIT_RPS", "0.5")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("API_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, cfg.Scheduler.Watchlist)
	assert.Equal(t, 0.5, cfg.Data.RateLimitRPS)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 8090, cfg.API.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Rules:    RulesConfig{Path: "rules.dsl"},
			Database: DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
			Data:     DataConfig{Provider: "mock", Period: "60d", Interval: "1d"},
			API:      APIConfig{Port: 8080},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no rules path", func(c *Config) { c.Rules.Path = "" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.Database.SQLitePath = "" }, true},
		{"postgres without host", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"redis without host", func(c *Config) { c.Redis.Enabled = true }, true},
		{"bad port", func(c *Config) { c.API.Port = 0 }, true},
		{"scheduler without watchlist", func(c *Config) { c.Scheduler.Enabled = true }, true},
		{"scheduler with watchlist", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Watchlist = []string{"AAPL"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEngine(t *testing.T) {
	cfg, err := LoadEngine("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig().Rules.Thresholds, cfg.Rules.Thresholds)

	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
thresholds:
  strong_buy: 6
  buy: 3
  sell: -3
  strong_sell: -6
indicators:
  trend:
    threshold: 0.01
  head_and_shoulders:
    lookback: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err = LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Rules.Thresholds.StrongBuy)
	assert.Equal(t, 3, cfg.Rules.LegacyScores["BUY"])
	assert.Equal(t, 0.01, cfg.Indicators.Trend.Threshold)
	assert.Equal(t, 25.0, cfg.Indicators.Trend.StrongADX)
	assert.Equal(t, 60, cfg.Indicators.Pattern.Lookback)
	assert.Equal(t, 30, cfg.Indicators.Pattern.MinBars)

	_, err = LoadEngine(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
