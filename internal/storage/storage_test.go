package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stock-advisor/internal/config"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

func newSQLite(t *testing.T) *SQLStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(symbol string, ts time.Time) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		Symbol:    symbol,
		Timestamp: ts,
		Decision:  models.DecisionBuy,
		Strength:  models.StrengthNormal,
		Score:     3,
		Reason:    "+3: RSI < 30 (oversold)",
		Triggered: []models.TriggeredRule{{Expression: "RSI < 30", Score: 3, Comment: "oversold"}},
		Indicators: models.IndicatorSet{
			"RSI":      25.5,
			"trend":    "Up",
			"hs_found": false,
		},
		Fundamentals: models.FundamentalSet{
			"trailingPE": models.Value(12.5),
			"ebitda":     nil,
		},
		Scorecard: map[string]int{"RSI": 5},
		Overall:   4,
		Bars:      60,
	}
}

// each backend must satisfy the same behaviour
func backends(t *testing.T) map[string]AnalysisStorage {
	return map[string]AnalysisStorage{
		"sqlite": newSQLite(t),
		"mock":   NewMockAnalysisStorage(),
	}
}

func TestStorage_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 21, 0, 0, 123456789, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord("AAPL", ts)
			require.NoError(t, s.Save(ctx, rec))
			require.NotEmpty(t, rec.ID)

			got, err := s.Get(ctx, rec.ID)
			require.NoError(t, err)

			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, "AAPL", got.Symbol)
			assert.True(t, ts.Equal(got.Timestamp))
			assert.Equal(t, models.DecisionBuy, got.Decision)
			assert.Equal(t, models.StrengthNormal, got.Strength)
			assert.Equal(t, 3, got.Score)
			assert.Equal(t, rec.Reason, got.Reason)
			assert.Equal(t, rec.Triggered, got.Triggered)
			assert.Equal(t, 25.5, got.Indicators["RSI"])
			assert.Equal(t, "Up", got.Indicators["trend"])
			assert.Equal(t, false, got.Indicators["hs_found"])
			pe, ok := got.Fundamentals.Get("trailingPE")
			assert.True(t, ok)
			assert.Equal(t, 12.5, pe)
			v, present := got.Fundamentals["ebitda"]
			assert.True(t, present)
			assert.Nil(t, v)
			assert.Equal(t, map[string]int{"RSI": 5}, got.Scorecard)
			assert.Equal(t, 4, got.Overall)
			assert.Equal(t, 60, got.Bars)
		})
	}
}

func TestStorage_GetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "does-not-exist")
			assert.ErrorIs(t, err, models.ErrAnalysisNotFound)
		})
	}
}

func TestStorage_History(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				sym := "AAPL"
				if i%2 == 1 {
					sym = "MSFT"
				}
				rec := sampleRecord(sym, base.Add(time.Duration(i)*time.Hour))
				rec.ID = fmt.Sprintf("id-%d", i)
				require.NoError(t, s.Save(ctx, rec))
			}

			all, err := s.History(ctx, HistoryFilter{})
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, "id-4", all[0].ID)
			assert.Equal(t, "id-0", all[4].ID)

			limited, err := s.History(ctx, HistoryFilter{Limit: 2})
			require.NoError(t, err)
			require.Len(t, limited, 2)
			assert.Equal(t, "id-4", limited[0].ID)
			assert.Equal(t, "id-3", limited[1].ID)

			msft, err := s.History(ctx, HistoryFilter{Symbol: "MSFT"})
			require.NoError(t, err)
			require.Len(t, msft, 2)
			assert.Equal(t, "id-3", msft[0].ID)

			paged, err := s.History(ctx, HistoryFilter{Limit: 2, Offset: 4})
			require.NoError(t, err)
			require.Len(t, paged, 1)
			assert.Equal(t, "id-0", paged[0].ID)
		})
	}
}

func TestStorage_RejectsInvalidRecord(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(context.Background(), &models.AnalysisRecord{Timestamp: time.Now()})
			assert.ErrorIs(t, err, models.ErrInvalidSymbol)

			err = s.Save(context.Background(), &models.AnalysisRecord{Symbol: "X"})
			assert.ErrorIs(t, err, models.ErrInvalidTimestamp)
		})
	}
}

func TestSQLStorage_NonFiniteIndicators(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	rec := sampleRecord("AAPL", time.Now())
	rec.Indicators["weird"] = math.Inf(1)
	rec.Indicators["nan"] = math.NaN()
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "+Inf", got.Indicators["weird"])
	assert.Equal(t, "NaN", got.Indicators["nan"])
}

func TestSQLStorage_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	rec := sampleRecord("AAPL", time.Now())
	rec.ID = "fixed"
	require.NoError(t, s.Save(ctx, rec))
	assert.Error(t, s.Save(ctx, rec))
}

func TestSQLStorage_Rebind(t *testing.T) {
	pg := &SQLStorage{driver: "postgres"}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &SQLStorage{driver: "sqlite"}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestMockAnalysisStorage_Errors(t *testing.T) {
	m := NewMockAnalysisStorage()
	boom := errors.New("boom")
	m.SaveErr = boom

	assert.ErrorIs(t, m.Save(context.Background(), sampleRecord("AAPL", time.Now())), boom)
	assert.Equal(t, 0, m.Len())
}
