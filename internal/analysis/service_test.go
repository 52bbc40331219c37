package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
)

const testRules = `
# always true for a valid series
IF Close > 0 THEN +1 # has price
IF F_trailingPE > 0 THEN +2 # profitable
IF RSI < 0 THEN -5
`

type fixture struct {
	svc   *Service
	src   *data.MockSource
	store *storage.MockAnalysisStorage
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := rules.DefaultConfig()
	engine, err := rules.NewEngine(cfg)
	require.NoError(t, err)

	ruleStore := rules.NewStore(rules.NewParser(cfg))
	report, err := ruleStore.LoadString("test", testRules)
	require.NoError(t, err)
	require.True(t, report.OK())

	src := data.NewMockSource()
	sink := storage.NewMockAnalysisStorage()

	svc, err := NewService(Config{
		Series:       src,
		Fundamentals: src,
		Rules:        ruleStore,
		Engine:       engine,
		Storage:      sink,
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC) }

	return fixture{svc: svc, src: src, store: sink}
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	engine, _ := rules.NewEngine(rules.DefaultConfig())
	store := rules.NewStore(rules.NewParser(rules.DefaultConfig()))
	src := data.NewMockSource()

	_, err := NewService(Config{Rules: store, Engine: engine})
	assert.Error(t, err)
	_, err = NewService(Config{Series: src, Engine: engine})
	assert.Error(t, err)
	_, err = NewService(Config{Series: src, Rules: store})
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Analyze(context.Background(), " aapl ", Options{})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, 3, rec.Score)
	assert.Equal(t, models.DecisionBuy, rec.Decision)
	assert.Equal(t, models.StrengthNormal, rec.Strength)
	assert.Equal(t, "+1: Close > 0 (has price); +2: F_trailingPE > 0 (profitable)", rec.Reason)
	assert.Len(t, rec.Triggered, 2)
	assert.Equal(t, 60, rec.Bars)
	assert.Contains(t, rec.Indicators, "RSI")
	assert.Len(t, rec.Fundamentals, len(models.FundamentalFields))
	assert.NotEmpty(t, rec.Scorecard)
	assert.GreaterOrEqual(t, rec.Overall, 0)
	assert.LessOrEqual(t, rec.Overall, 5)
	assert.Equal(t, time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), rec.Timestamp)

	require.NotEmpty(t, rec.ID)
	stored, err := f.store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Score, stored.Score)
}

func TestAnalyze_UsesDefaultsAndOptions(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Analyze(context.Background(), "MSFT", Options{Period: "1y"})
	require.NoError(t, err)
	assert.Equal(t, 365, rec.Bars)
}

func TestAnalyze_NoData(t *testing.T) {
	f := newFixture(t)
	f.src.SetSeries("GONE", &models.PriceSeries{Symbol: "GONE"})

	_, err := f.svc.Analyze(context.Background(), "GONE", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoData))
	assert.Equal(t, 0, f.store.Len())
}

func TestAnalyze_InvalidSymbol(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Analyze(context.Background(), "  ", Options{})
	assert.ErrorIs(t, err, models.ErrInvalidSymbol)
}

func TestAnalyze_FundamentalsDegrade(t *testing.T) {
	f := newFixture(t)
	f.src.FailFundamentals("AAPL", errors.New("quoteSummary unavailable"))

	rec, err := f.svc.Analyze(context.Background(), "AAPL", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, models.DecisionHold, rec.Decision)
	assert.Len(t, rec.Fundamentals, len(models.FundamentalFields))
	for _, k := range models.FundamentalFields {
		assert.Nil(t, rec.Fundamentals[k], k)
	}
}

func TestAnalyze_PersistFailureStillReturnsResult(t *testing.T) {
	f := newFixture(t)
	f.store.SaveErr = errors.New("disk full")

	rec, err := f.svc.Analyze(context.Background(), "AAPL", Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Score)
	assert.Equal(t, 0, f.store.Len())
}

func TestAnalyze_WithoutStorageOrFundamentals(t *testing.T) {
	engine, err := rules.NewEngine(rules.DefaultConfig())
	require.NoError(t, err)
	store := rules.NewStore(rules.NewParser(rules.DefaultConfig()))
	_, err = store.LoadString("test", testRules)
	require.NoError(t, err)

	svc, err := NewService(Config{Series: data.NewMockSource(), Rules: store, Engine: engine})
	require.NoError(t, err)

	rec, err := svc.Analyze(context.Background(), "AAPL", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Score)
	assert.Empty(t, rec.ID)
}

func TestAnalyzeSeries(t *testing.T) {
	f := newFixture(t)

	bars := make([]models.PriceBar, 5)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{Timestamp: start.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10, Volume: 100}
	}
	series, err := models.NewPriceSeries("CSV", bars)
	require.NoError(t, err)

	rec, err := f.svc.AnalyzeSeries(context.Background(), series, nil)
	require.NoError(t, err)
	assert.Equal(t, "CSV", rec.Symbol)
	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, 5, rec.Bars)
	assert.NotContains(t, rec.Indicators, "SMA50")

	_, err = f.svc.AnalyzeSeries(context.Background(), &models.PriceSeries{Symbol: "X"}, nil)
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)

	res := f.svc.Evaluate(models.IndicatorSet{"Close": 10.0, "RSI": -1.0}, nil)
	assert.Equal(t, -4, res.Score)
	assert.Equal(t, models.DecisionSell, res.Decision)
	assert.Equal(t, models.StrengthStrong, res.Strength)
}

func TestAnalyze_Concurrent(t *testing.T) {
	f := newFixture(t)
	symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA"}

	var wg sync.WaitGroup
	errs := make(chan error, len(symbols)*4)
	for i := 0; i < 4; i++ {
		for _, sym := range symbols {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				if _, err := f.svc.Analyze(context.Background(), sym, Options{}); err != nil {
					errs <- err
				}
			}(sym)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 16, f.store.Len())
}
