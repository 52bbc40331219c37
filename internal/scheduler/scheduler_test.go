package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, symbol string, opts analysis.Options) (*models.AnalysisRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	if err := f.fail[symbol]; err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a per-symbol deadline")
	}
	return &models.AnalysisRecord{Symbol: symbol, Timestamp: time.Now(), Decision: models.DecisionHold}, nil
}

func TestNew_InvalidCronExpression(t *testing.T) {
	_, err := New(Config{WatchlistCron: "not a cron"}, &fakeAnalyzer{}, nil)
	assert.Error(t, err)

	_, err = New(Config{ReloadCron: "* * *"}, nil, rules.NewStore(rules.NewParser(rules.DefaultConfig())))
	assert.Error(t, err)

	// five fields are rejected: the seconds field is mandatory
	_, err = New(Config{WatchlistCron: "0 22 * * 1-5"}, &fakeAnalyzer{}, nil)
	assert.Error(t, err)

	_, err = New(Config{WatchlistCron: "0 0 22 * * 1-5"}, nil, nil)
	assert.Error(t, err)
}

func TestNew_RegistersJobs(t *testing.T) {
	store := rules.NewStore(rules.NewParser(rules.DefaultConfig()))

	s, err := New(Config{WatchlistCron: "0 0 22 * * 1-5", ReloadCron: "*/30 * * * * *"}, &fakeAnalyzer{}, store)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())

	s, err = New(Config{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Jobs())

	s.Start()
	s.Stop()
}

func TestRunWatchlist(t *testing.T) {
	analyzer := &fakeAnalyzer{fail: map[string]error{"BAD": models.ErrNoData}}
	s, err := New(Config{Watchlist: []string{"AAPL", "BAD", " ", "MSFT"}}, analyzer, nil)
	require.NoError(t, err)

	summary := s.RunWatchlist(context.Background())

	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "MSFT", summary.Records[1].Symbol)
	assert.Equal(t, []string{"AAPL", "BAD", "MSFT"}, analyzer.calls)
}

func TestRunWatchlist_Cancelled(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s, err := New(Config{Watchlist: []string{"AAPL", "MSFT"}}, analyzer, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := s.RunWatchlist(ctx)
	assert.Equal(t, 0, summary.Analyzed)
	assert.Empty(t, analyzer.calls)
}

func TestReloadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.dsl")
	require.NoError(t, os.WriteFile(path, []byte("IF RSI < 30 THEN +2\n"), 0o644))

	store := rules.NewStore(rules.NewParser(rules.DefaultConfig()))
	_, err := store.LoadFile(path)
	require.NoError(t, err)

	s, err := New(Config{ReloadCron: "*/30 * * * * *"}, nil, store)
	require.NoError(t, err)

	// unchanged file is a no-op
	s.ReloadRules()
	assert.Equal(t, 1, store.Current().Len())

	require.NoError(t, os.WriteFile(path, []byte("IF RSI < 30 THEN +2\nIF RSI > 70 THEN -2\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	s.ReloadRules()
	assert.Equal(t, 2, store.Current().Len())

	// a vanished file keeps the last good rule set
	require.NoError(t, os.Remove(path))
	s.ReloadRules()
	assert.Equal(t, 2, store.Current().Len())
}
