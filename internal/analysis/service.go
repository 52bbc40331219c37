package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/internal/scorecard"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

// Options select the price history to analyze. Empty fields take the
// service defaults.
type Options struct {
	Period   string `json:"period,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// Config holds the collaborators of a Service
type Config struct {
	Series       data.SeriesSource
	Fundamentals data.FundamentalsSource // optional
	Rules        *rules.Store
	Engine       *rules.Engine
	Computer     *indicator.Computer // defaults to indicator.DefaultConfig()
	Scorecard    *scorecard.Registry // defaults to the built-in scorers
	Storage      storage.AnalysisStorage
	Defaults     Options
}

// Service runs the analysis pipeline: fetch, indicators, rules, scorecard,
// persist. It holds no per-request state and is safe for concurrent use.
type Service struct {
	series       data.SeriesSource
	fundamentals data.FundamentalsSource
	rules        *rules.Store
	engine       *rules.Engine
	computer     *indicator.Computer
	scorecard    *scorecard.Registry
	storage      storage.AnalysisStorage
	defaults     Options
	now          func() time.Time
}

// NewService creates a service; Series, Rules and Engine are required
func NewService(cfg Config) (*Service, error) {
	if cfg.Series == nil {
		return nil, errors.New("series source cannot be nil")
	}
	if cfg.Rules == nil {
		return nil, errors.New("rule store cannot be nil")
	}
	if cfg.Engine == nil {
		return nil, errors.New("engine cannot be nil")
	}
	if cfg.Computer == nil {
		cfg.Computer = indicator.NewComputer(indicator.DefaultConfig())
	}
	if cfg.Scorecard == nil {
		cfg.Scorecard = scorecard.NewRegistry()
	}
	if cfg.Defaults.Period == "" {
		cfg.Defaults.Period = "60d"
	}
	if cfg.Defaults.Interval == "" {
		cfg.Defaults.Interval = "1d"
	}

	return &Service{
		series:       cfg.Series,
		fundamentals: cfg.Fundamentals,
		rules:        cfg.Rules,
		engine:       cfg.Engine,
		computer:     cfg.Computer,
		scorecard:    cfg.Scorecard,
		storage:      cfg.Storage,
		defaults:     cfg.Defaults,
		now:          time.Now,
	}, nil
}

// Rules returns the rule store the service evaluates against
func (s *Service) Rules() *rules.Store {
	return s.rules
}

// Engine returns the rule engine
func (s *Service) Engine() *rules.Engine {
	return s.engine
}

// Analyze fetches data for symbol and runs the full pipeline. A missing
// series is fatal and surfaces as models.ErrNoData; a fundamentals failure
// degrades to all-null fundamentals.
func (s *Service) Analyze(ctx context.Context, symbol string, opts Options) (*models.AnalysisRecord, error) {
	start := time.Now()
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if opts.Period == "" {
		opts.Period = s.defaults.Period
	}
	if opts.Interval == "" {
		opts.Interval = s.defaults.Interval
	}

	series, err := s.series.FetchSeries(ctx, symbol, opts.Period, opts.Interval)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		if errors.Is(err, models.ErrNoData) {
			logger.WithContext(ctx).Warn("No price data for symbol",
				logger.String("symbol", symbol),
				logger.String("period", opts.Period),
				logger.String("interval", opts.Interval),
			)
		}
		return nil, fmt.Errorf("failed to fetch series for %s: %w", symbol, err)
	}

	fundamentals := s.fetchFundamentals(ctx, symbol)

	record, err := s.run(ctx, series, fundamentals)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	analysesTotal.WithLabelValues("success").Inc()
	analysisDuration.Observe(time.Since(start).Seconds())

	logger.WithContext(ctx).Info("Analysis completed",
		logger.String("symbol", symbol),
		logger.String("decision", string(record.Decision)),
		logger.String("strength", string(record.Strength)),
		logger.Int("score", record.Score),
		logger.Int("triggered", len(record.Triggered)),
		logger.Duration("duration", time.Since(start)),
	)
	return record, nil
}

// AnalyzeSeries runs the pipeline over a caller-provided series. Nil
// fundamentals are treated as all-null.
func (s *Service) AnalyzeSeries(ctx context.Context, series *models.PriceSeries, fundamentals models.FundamentalSet) (*models.AnalysisRecord, error) {
	if series == nil || series.Len() == 0 {
		return nil, models.ErrNoData
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	if fundamentals == nil {
		fundamentals = models.EmptyFundamentals()
	}
	return s.run(ctx, series, fundamentals)
}

// Evaluate scores caller-supplied indicators and fundamentals against the
// active rule set
func (s *Service) Evaluate(indicators models.IndicatorSet, fundamentals models.FundamentalSet) models.EvaluationResult {
	return s.engine.Evaluate(s.rules.Current(), indicators, fundamentals)
}

func (s *Service) fetchFundamentals(ctx context.Context, symbol string) models.FundamentalSet {
	if s.fundamentals == nil {
		return models.EmptyFundamentals()
	}

	f, err := s.fundamentals.FetchFundamentals(ctx, symbol)
	if err != nil {
		fundamentalsDegraded.Inc()
		logger.Warn("Fundamentals unavailable, using null values",
			logger.String("symbol", symbol),
			logger.ErrorField(err),
		)
		return models.EmptyFundamentals()
	}

	out := models.EmptyFundamentals()
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (s *Service) run(ctx context.Context, series *models.PriceSeries, fundamentals models.FundamentalSet) (*models.AnalysisRecord, error) {
	indicators, err := s.computer.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("failed to compute indicators for %s: %w", series.Symbol, err)
	}

	result := s.engine.Evaluate(s.rules.Current(), indicators, fundamentals)
	card := s.scorecard.Compute(indicators)

	record := &models.AnalysisRecord{
		Symbol:       series.Symbol,
		Timestamp:    s.now().UTC(),
		Decision:     result.Decision,
		Strength:     result.Strength,
		Score:        result.Score,
		Reason:       result.Reason,
		Triggered:    result.Triggered,
		Indicators:   indicators,
		Fundamentals: fundamentals,
		Scorecard:    card,
		Overall:      card.Overall(),
		Bars:         series.Len(),
	}

	s.persist(ctx, record)
	return record, nil
}

// persist stores the record; failures are logged and never surfaced
func (s *Service) persist(ctx context.Context, record *models.AnalysisRecord) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(ctx, record); err != nil {
		persistFailures.Inc()
		logger.Error("Failed to persist analysis",
			logger.String("symbol", record.Symbol),
			logger.ErrorField(err),
		)
	}
}
