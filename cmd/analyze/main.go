package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/config"
	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

type options struct {
	rulesPath    string
	engineConfig string
	csvPath      string
	csvSymbol    string
	provider     string
	period       string
	interval     string
	search       string
	top          int
	asJSON       bool
	save         bool
	noColor      bool
	verbose      bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.rulesPath, "rules", cfg.Rules.Path, "rules file")
	flag.StringVar(&opts.engineConfig, "engine-config", cfg.Rules.EngineConfigPath, "YAML engine overrides")
	flag.StringVar(&opts.csvPath, "csv", "", "analyze a local Date,Open,High,Low,Close,Volume CSV instead of fetching")
	flag.StringVar(&opts.csvSymbol, "csv-symbol", "", "symbol to report for -csv (defaults to the file name)")
	flag.StringVar(&opts.provider, "provider", cfg.Data.Provider, "data provider (yahoo|mock)")
	flag.StringVar(&opts.period, "period", cfg.Data.Period, "history period, e.g. 60d, 6mo, 1y")
	flag.StringVar(&opts.interval, "interval", cfg.Data.Interval, "bar interval, e.g. 1d, 1h")
	flag.StringVar(&opts.search, "search", "", "look up ticker symbols by company name and exit")
	flag.IntVar(&opts.top, "top", 3, "number of influential rules to show")
	flag.BoolVar(&opts.asJSON, "json", false, "print records as JSON")
	flag.BoolVar(&opts.save, "save", false, "persist results to the configured database")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] SYMBOL [SYMBOL...]\n       %s [flags] -csv prices.csv\n\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if opts.noColor || opts.asJSON {
		color.NoColor = true
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("ERROR"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, symbols []string) error {
	source, err := data.NewFactory().Create(opts.provider, data.Config{
		BaseURL:      cfg.Data.BaseURL,
		Timeout:      cfg.Data.Timeout,
		RateLimitRPS: cfg.Data.RateLimitRPS,
	})
	if err != nil {
		return err
	}

	if opts.search != "" {
		searcher, ok := source.(data.Searcher)
		if !ok {
			return data.ErrSearchUnsupported
		}
		results, err := searcher.Search(ctx, opts.search, 10)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printSearch(os.Stdout, opts.search, results)
		return nil
	}

	if opts.csvPath == "" && len(symbols) == 0 {
		flag.Usage()
		return errors.New("no symbol given")
	}

	engineCfg, err := config.LoadEngine(opts.engineConfig)
	if err != nil {
		return err
	}
	engine, err := rules.NewEngine(engineCfg.Rules)
	if err != nil {
		return err
	}
	store := rules.NewStore(rules.NewParser(engineCfg.Rules))
	report, err := store.LoadFile(opts.rulesPath)
	if err != nil {
		return err
	}
	for _, skipped := range report.Skipped {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow("WARN "), skipped.Error())
	}

	svcCfg := analysis.Config{
		Series:       source,
		Fundamentals: source,
		Rules:        store,
		Engine:       engine,
		Computer:     indicator.NewComputer(engineCfg.Indicators),
		Defaults:     analysis.Options{Period: opts.period, Interval: opts.interval},
	}
	if opts.save {
		sink, err := storage.New(cfg.Database)
		if err != nil {
			return err
		}
		defer sink.Close()
		svcCfg.Storage = sink
	}
	service, err := analysis.NewService(svcCfg)
	if err != nil {
		return err
	}

	var records []*models.AnalysisRecord
	if opts.csvPath != "" {
		rec, err := analyzeCSV(ctx, service, opts)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	failed := 0
	for _, symbol := range symbols {
		rec, err := service.Analyze(ctx, symbol, analysis.Options{Period: opts.period, Interval: opts.interval})
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("ERROR"), strings.ToUpper(symbol), err)
			continue
		}
		records = append(records, rec)
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	} else {
		for _, rec := range records {
			printReport(os.Stdout, rec, opts.top)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
	}
	return nil
}

// analyzeCSV runs the pipeline over a local file. Fundamentals are all null.
func analyzeCSV(ctx context.Context, service *analysis.Service, opts options) (*models.AnalysisRecord, error) {
	symbol := opts.csvSymbol
	if symbol == "" {
		symbol = strings.TrimSuffix(filepath.Base(opts.csvPath), filepath.Ext(opts.csvPath))
	}
	series, err := data.LoadCSVFile(strings.ToUpper(symbol), opts.csvPath)
	if err != nil {
		return nil, err
	}
	return service.AnalyzeSeries(ctx, series, nil)
}
