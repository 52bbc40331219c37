package data

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// MockSource is a deterministic in-memory Source. Unless overridden, the
// series for a symbol is a seeded random walk, so the same symbol and period
// always produce the same bars.
type MockSource struct {
	mu           sync.RWMutex
	end          time.Time
	series       map[string]*models.PriceSeries
	fundamentals map[string]models.FundamentalSet
	seriesErr    map[string]error
	fundErr      map[string]error
	calls        map[string]int
}

// NewMockSource creates a mock source whose generated series end on 2024-01-01
func NewMockSource() *MockSource {
	return &MockSource{
		end:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		series:       make(map[string]*models.PriceSeries),
		fundamentals: make(map[string]models.FundamentalSet),
		seriesErr:    make(map[string]error),
		fundErr:      make(map[string]error),
		calls:        make(map[string]int),
	}
}

func (m *MockSource) Name() string { return "mock" }

// SetSeries overrides the series returned for symbol
func (m *MockSource) SetSeries(symbol string, series *models.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[symbol] = series
}

// SetFundamentals overrides the fundamentals returned for symbol
func (m *MockSource) SetFundamentals(symbol string, f models.FundamentalSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundamentals[symbol] = f
}

// FailSeries makes FetchSeries return err for symbol
func (m *MockSource) FailSeries(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seriesErr[symbol] = err
}

// FailFundamentals makes FetchFundamentals return err for symbol
func (m *MockSource) FailFundamentals(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundErr[symbol] = err
}

// Calls returns how many fetches of the given kind ("series" or
// "fundamentals") were made for symbol
func (m *MockSource) Calls(kind, symbol string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[kind+":"+symbol]
}

func (m *MockSource) FetchSeries(ctx context.Context, symbol, period, interval string) (*models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, models.ErrInvalidSymbol
	}

	m.mu.Lock()
	m.calls["series:"+symbol]++
	err := m.seriesErr[symbol]
	s, ok := m.series[symbol]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ok {
		if s.Len() == 0 {
			return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
		}
		return s, nil
	}

	days, err := PeriodDays(period)
	if err != nil {
		return nil, err
	}
	return randomWalk(symbol, days, m.end), nil
}

func (m *MockSource) FetchFundamentals(ctx context.Context, symbol string) (models.FundamentalSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls["fundamentals:"+symbol]++
	err := m.fundErr[symbol]
	f, ok := m.fundamentals[symbol]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ok {
		out := models.EmptyFundamentals()
		for k, v := range f {
			out[k] = v
		}
		return out, nil
	}

	seed := symbolSeed(symbol)
	out := models.EmptyFundamentals()
	out["trailingPE"] = models.Value(10 + float64(seed%300)/10)
	out["forwardPE"] = models.Value(8 + float64(seed%250)/10)
	out["priceToBook"] = models.Value(0.5 + float64(seed%60)/10)
	out["marketCap"] = models.Value(float64(1+seed%500) * 1e9)
	out["debtToEquity"] = models.Value(float64(seed % 200))
	out["dividendYield"] = models.Value(float64(seed%50) / 1000)
	return out, nil
}

// Search matches symbols that have an override or a prefix of the query
func (m *MockSource) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return []SearchResult{}, nil
	}
	return []SearchResult{{Symbol: query, Name: query + " Mock Corp", Exchange: "MOCK"}}, nil
}

func symbolSeed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}

// randomWalk generates one daily bar per day ending at end
func randomWalk(symbol string, days int, end time.Time) *models.PriceSeries {
	seed := symbolSeed(symbol)
	rng := rand.New(rand.NewSource(int64(seed)))

	price := 20 + float64(seed%200)
	bars := make([]models.PriceBar, days)
	startDay := end.AddDate(0, 0, -(days - 1))

	for i := 0; i < days; i++ {
		open := price
		change := rng.NormFloat64() * 0.015
		closePrice := math.Max(1, open*(1+change))
		spread := math.Abs(rng.NormFloat64()) * 0.01 * open

		bars[i] = models.PriceBar{
			Timestamp: startDay.AddDate(0, 0, i),
			Open:      open,
			High:      math.Max(open, closePrice) + spread,
			Low:       math.Max(0.5, math.Min(open, closePrice)-spread),
			Close:     closePrice,
			Volume:    float64(100000 + rng.Intn(900000)),
		}
		price = closePrice
	}

	return &models.PriceSeries{Symbol: symbol, Bars: bars}
}

// PeriodDays converts a provider period ("60d", "3mo", "1y", "ytd", "max")
// into an approximate number of daily bars.
func PeriodDays(period string) (int, error) {
	if !periodRe.MatchString(period) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	switch period {
	case "ytd":
		return 180, nil
	case "max":
		return 2520, nil
	}

	unit := strings.TrimLeft(period, "0123456789")
	n, err := strconv.Atoi(strings.TrimSuffix(period, unit))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	switch unit {
	case "d":
		return n, nil
	case "wk":
		return n * 7, nil
	case "mo":
		return n * 30, nil
	default: // "y"
		return n * 365, nil
	}
}
