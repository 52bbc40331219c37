package data

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stock-advisor/internal/cache"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

func TestFactory(t *testing.T) {
	f := NewFactory()
	assert.Equal(t, []string{"mock", "yahoo"}, f.List())

	src, err := f.Create("mock", Config{})
	require.NoError(t, err)
	assert.Equal(t, "mock", src.Name())

	src, err = f.Create("yahoo", Config{})
	require.NoError(t, err)
	assert.Equal(t, "yahoo", src.Name())

	_, err = f.Create("bloomberg", Config{})
	assert.Error(t, err)

	assert.Error(t, f.Register("mock", func(Config) (Source, error) { return NewMockSource(), nil }))
	assert.Error(t, f.Register("", func(Config) (Source, error) { return NewMockSource(), nil }))
	assert.Error(t, f.Register("nil", nil))
}

func TestMockSource_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewMockSource().FetchSeries(ctx, "AAPL", "60d", "1d")
	require.NoError(t, err)
	b, err := NewMockSource().FetchSeries(ctx, "AAPL", "60d", "1d")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 60, a.Len())
	assert.NoError(t, a.Validate())

	c, err := NewMockSource().FetchSeries(ctx, "MSFT", "60d", "1d")
	require.NoError(t, err)
	assert.NotEqual(t, a.Bars[len(a.Bars)-1].Close, c.Bars[len(c.Bars)-1].Close)
}

func TestMockSource_Overrides(t *testing.T) {
	ctx := context.Background()
	m := NewMockSource()

	m.SetSeries("EMPTY", &models.PriceSeries{Symbol: "EMPTY"})
	_, err := m.FetchSeries(ctx, "EMPTY", "60d", "1d")
	assert.ErrorIs(t, err, models.ErrNoData)

	boom := errors.New("boom")
	m.FailFundamentals("AAPL", boom)
	_, err = m.FetchFundamentals(ctx, "AAPL")
	assert.ErrorIs(t, err, boom)

	m.SetFundamentals("MSFT", models.FundamentalSet{"trailingPE": models.Value(30)})
	f, err := m.FetchFundamentals(ctx, "MSFT")
	require.NoError(t, err)
	assert.Len(t, f, len(models.FundamentalFields))
	pe, ok := f.Get("trailingPE")
	assert.True(t, ok)
	assert.Equal(t, 30.0, pe)

	assert.Equal(t, 1, m.Calls("series", "EMPTY"))
	assert.Equal(t, 1, m.Calls("fundamentals", "MSFT"))
}

func TestPeriodDays(t *testing.T) {
	tests := []struct {
		period string
		want   int
		ok     bool
	}{
		{"60d", 60, true},
		{"2wk", 14, true},
		{"3mo", 90, true},
		{"1y", 365, true},
		{"ytd", 180, true},
		{"max", 2520, true},
		{"0d", 0, false},
		{"d", 0, false},
		{"60", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := PeriodDays(tt.period)
		if tt.ok {
			require.NoError(t, err, tt.period)
			assert.Equal(t, tt.want, got, tt.period)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPeriod, tt.period)
		}
	}
}

func TestLoadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-03,12,13,11,12.5,12.5,300",
		"2024-01-02,11,12,10,11.5,11.5,200",
		"2024-01-04,,14,12,13.5,13.5,400",
		"not-a-date,1,1,1,1,1,1",
		"2024-01-05,13,14,12,13.5,13.5,500",
		"2024-01-05,13,15,12,14.5,14.5,600",
	}, "\n")

	series, err := LoadCSV("TEST", strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series.Bars[0].Timestamp)
	assert.Equal(t, 11.5, series.Bars[0].Close)
	assert.Equal(t, 12.5, series.Bars[1].Close)
	assert.Equal(t, 14.5, series.Bars[2].Close)
	assert.Equal(t, 600.0, series.Bars[2].Volume)
}

func TestLoadCSV_Headers(t *testing.T) {
	series, err := LoadCSV("X", strings.NewReader("close,low,high,open,timestamp\n10,9,11,10,01/02/2024\n"))
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	assert.Equal(t, 0.0, series.Bars[0].Volume)

	_, err = LoadCSV("X", strings.NewReader("Date,Open,High,Low\n2024-01-02,1,1,1\n"))
	assert.Error(t, err)

	_, err = LoadCSV("X", strings.NewReader("Open,High,Low,Close\n1,1,1,1\n"))
	assert.Error(t, err)

	_, err = LoadCSV("X", strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrNoData)

	_, err = LoadCSV("X", strings.NewReader("Date,Open,High,Low,Close\n"))
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	mock := NewMockSource()
	src := NewCachedSource(mock, cache.NewMemoryCache(), time.Minute)

	first, err := src.FetchSeries(ctx, "AAPL", "60d", "1d")
	require.NoError(t, err)
	second, err := src.FetchSeries(ctx, "aapl", "60d", "1d")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.Calls("series", "AAPL"))
	assert.Equal(t, 0, mock.Calls("series", "aapl"))
	require.Equal(t, first.Len(), second.Len())
	for i := range first.Bars {
		assert.True(t, first.Bars[i].Timestamp.Equal(second.Bars[i].Timestamp))
		assert.Equal(t, first.Bars[i].Close, second.Bars[i].Close)
	}

	_, err = src.FetchSeries(ctx, "AAPL", "1y", "1d")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls("series", "AAPL"))

	f1, err := src.FetchFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	f2, err := src.FetchFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("fundamentals", "AAPL"))
	assert.Equal(t, f1, f2)

	results, err := src.Search(ctx, "aapl", 1)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", results[0].Symbol)
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	mock := NewMockSource()
	mock.SetSeries("GONE", &models.PriceSeries{Symbol: "GONE"})
	src := NewCachedSource(mock, cache.NewMemoryCache(), time.Minute)

	_, err := src.FetchSeries(ctx, "GONE", "60d", "1d")
	assert.ErrorIs(t, err, models.ErrNoData)
	_, err = src.FetchSeries(ctx, "GONE", "60d", "1d")
	assert.ErrorIs(t, err, models.ErrNoData)
	assert.Equal(t, 2, mock.Calls("series", "GONE"))
}
