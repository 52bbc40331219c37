package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

// Analyzer runs one symbol through the analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, opts analysis.Options) (*models.AnalysisRecord, error)
}

// RuleReloader re-reads the rules file when it changed
type RuleReloader interface {
	ReloadIfChanged() (bool, *rules.ParseReport, error)
}

// Config holds the cron expressions (with a seconds field) and the watchlist.
// An empty expression disables its job.
type Config struct {
	WatchlistCron string
	ReloadCron    string
	Watchlist     []string
	Options       analysis.Options
	SymbolTimeout time.Duration
}

// RunSummary is the outcome of one watchlist pass
type RunSummary struct {
	Analyzed int
	Failed   int
	Records  []*models.AnalysisRecord
}

// Scheduler manages the watchlist and rules reload cron jobs
type Scheduler struct {
	cron     *cron.Cron
	analyzer Analyzer
	reloader RuleReloader
	cfg      Config

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex // one watchlist pass at a time
}

// New creates a scheduler and registers its jobs. Jobs that are still
// running when their next tick fires are skipped.
func New(cfg Config, analyzer Analyzer, reloader RuleReloader) (*Scheduler, error) {
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
			cron.WithLogger(cronLogger{}),
		),
		analyzer: analyzer,
		reloader: reloader,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}

	if cfg.WatchlistCron != "" {
		if analyzer == nil {
			cancel()
			return nil, errors.New("watchlist job requires an analyzer")
		}
		if _, err := s.cron.AddFunc(cfg.WatchlistCron, func() { s.RunWatchlist(s.ctx) }); err != nil {
			cancel()
			return nil, fmt.Errorf("register watchlist job: %w", err)
		}
	}
	if cfg.ReloadCron != "" && reloader != nil {
		if _, err := s.cron.AddFunc(cfg.ReloadCron, s.ReloadRules); err != nil {
			cancel()
			return nil, fmt.Errorf("register rules reload job: %w", err)
		}
	}
	return s, nil
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started",
		logger.Int("jobs", s.Jobs()),
		logger.Strings("watchlist", s.cfg.Watchlist),
	)
}

// Stop cancels in-flight analyses and waits for running jobs to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

// RunWatchlist analyzes every watchlist symbol in order. A failing symbol
// is logged and does not stop the pass.
func (s *Scheduler) RunWatchlist(ctx context.Context) RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	runID := logger.NewRequestID()
	ctx = logger.WithRequestID(ctx, runID)
	log := logger.WithContext(ctx)
	log.Info("Watchlist run started", logger.Int("symbols", len(s.cfg.Watchlist)))

	var summary RunSummary
	for _, symbol := range s.cfg.Watchlist {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		if ctx.Err() != nil {
			log.Warn("Watchlist run cancelled", logger.String("next_symbol", symbol))
			break
		}

		symbolCtx, cancel := context.WithTimeout(ctx, s.cfg.SymbolTimeout)
		record, err := s.analyzer.Analyze(symbolCtx, symbol, s.cfg.Options)
		cancel()

		if err != nil {
			summary.Failed++
			watchlistSymbolsTotal.WithLabelValues("error").Inc()
			log.Error("Watchlist analysis failed",
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		summary.Analyzed++
		summary.Records = append(summary.Records, record)
		watchlistSymbolsTotal.WithLabelValues("success").Inc()
	}

	jobRunsTotal.WithLabelValues("watchlist").Inc()
	jobDuration.WithLabelValues("watchlist").Observe(time.Since(start).Seconds())
	log.Info("Watchlist run completed",
		logger.Int("analyzed", summary.Analyzed),
		logger.Int("failed", summary.Failed),
		logger.Duration("duration", time.Since(start)),
	)
	return summary
}

// ReloadRules reloads the rules file when its modification time changed
func (s *Scheduler) ReloadRules() {
	start := time.Now()
	reloaded, report, err := s.reloader.ReloadIfChanged()
	jobRunsTotal.WithLabelValues("rules_reload").Inc()
	jobDuration.WithLabelValues("rules_reload").Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("Rules reload failed", logger.ErrorField(err))
		return
	}
	if !reloaded {
		return
	}
	logger.Info("Rules reloaded",
		logger.String("source", report.Source),
		logger.Int("accepted", report.Accepted),
		logger.Int("skipped", len(report.Skipped)),
	)
}

// cronLogger routes cron's own logging through zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, logger.Any("details", keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, logger.ErrorField(err), logger.Any("details", keysAndValues))
}
