package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

var (
	// ErrInvalidPeriod is returned for a period the source cannot express
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidInterval is returned for an unsupported bar interval
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrSearchUnsupported is returned by sources without symbol search
	ErrSearchUnsupported = errors.New("symbol search not supported by source")
)

// SeriesSource supplies historical price series
type SeriesSource interface {
	// FetchSeries returns an ascending, duplicate-free series or an error
	// wrapping models.ErrNoData when the provider has nothing for the symbol
	FetchSeries(ctx context.Context, symbol, period, interval string) (*models.PriceSeries, error)
}

// FundamentalsSource supplies fundamental metrics
type FundamentalsSource interface {
	// FetchFundamentals returns every canonical field, nil where unknown
	FetchFundamentals(ctx context.Context, symbol string) (models.FundamentalSet, error)
}

// Source is a provider of both series and fundamentals
type Source interface {
	SeriesSource
	FundamentalsSource

	// Name returns the provider name (e.g., "yahoo", "mock")
	Name() string
}

// Searcher resolves free text to ticker symbols
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// SearchResult is one symbol candidate from a search
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

// Config holds configuration for a source
type Config struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	RateLimitRPS float64 // <= 0 disables pacing
}

// Factory creates Source instances by provider name
type Factory struct {
	mu        sync.RWMutex
	factories map[string]func(Config) (Source, error)
}

// NewFactory creates a factory with the built-in providers registered
func NewFactory() *Factory {
	f := &Factory{
		factories: make(map[string]func(Config) (Source, error)),
	}

	f.Register("yahoo", func(cfg Config) (Source, error) { return NewYahooClient(cfg), nil })
	f.Register("mock", func(Config) (Source, error) { return NewMockSource(), nil })

	return f
}

// Create creates a new source instance
func (f *Factory) Create(name string, cfg Config) (Source, error) {
	f.mu.RLock()
	fn, exists := f.factories[name]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown data provider: %s", name)
	}
	return fn(cfg)
}

// Register registers a provider constructor
func (f *Factory) Register(name string, fn func(Config) (Source, error)) error {
	if name == "" {
		return errors.New("provider name cannot be empty")
	}
	if fn == nil {
		return errors.New("provider constructor cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.factories[name]; exists {
		return fmt.Errorf("provider already registered: %s", name)
	}
	f.factories[name] = fn
	return nil
}

// List returns the registered provider names, sorted
func (f *Factory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeBars drops incomplete bars, sorts ascending and removes duplicate
// timestamps (the later row wins), then validates the result.
func normalizeBars(symbol string, bars []models.PriceBar) (*models.PriceSeries, error) {
	clean := make([]models.PriceBar, 0, len(bars))
	for i := range bars {
		if bars[i].Validate() != nil {
			continue
		}
		clean = append(clean, bars[i])
	}

	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Timestamp.Before(clean[j].Timestamp)
	})

	out := clean[:0]
	for _, b := range clean {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(b.Timestamp) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	return models.NewPriceSeries(symbol, out)
}
