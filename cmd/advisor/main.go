package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/api"
	"github.com/mohamedkhairy/stock-advisor/internal/cache"
	"github.com/mohamedkhairy/stock-advisor/internal/config"
	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/internal/scheduler"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
	"github.com/mohamedkhairy/stock-advisor/pkg/indicator"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting stock advisor service",
		logger.Int("port", cfg.API.Port),
		logger.String("provider", cfg.Data.Provider),
		logger.Float64("provider_rps", cfg.Data.RateLimitRPS),
		logger.String("db_driver", cfg.Database.Driver),
		logger.Bool("redis", cfg.Redis.Enabled),
		logger.Int("rate_limit_rps", cfg.API.RateLimitRPS),
	)

	engineCfg, err := config.LoadEngine(cfg.Rules.EngineConfigPath)
	if err != nil {
		logger.Fatal("Failed to load engine config", logger.ErrorField(err))
	}

	// Rule engine and rule set
	engine, err := rules.NewEngine(engineCfg.Rules)
	if err != nil {
		logger.Fatal("Invalid engine config", logger.ErrorField(err))
	}
	ruleStore := rules.NewStore(rules.NewParser(engineCfg.Rules))
	if _, err := ruleStore.LoadFile(cfg.Rules.Path); err != nil {
		logger.Fatal("Failed to load rules",
			logger.String("path", cfg.Rules.Path),
			logger.ErrorField(err),
		)
	}

	// Market data source behind a cache
	source, err := data.NewFactory().Create(cfg.Data.Provider, data.Config{
		BaseURL:      cfg.Data.BaseURL,
		Timeout:      cfg.Data.Timeout,
		RateLimitRPS: cfg.Data.RateLimitRPS,
	})
	if err != nil {
		logger.Fatal("Failed to create data source", logger.ErrorField(err))
	}

	var ready []api.Pinger
	var dataCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			KeyPrefix:    "advisor:",
		})
		if err != nil {
			logger.Fatal("Failed to initialize Redis cache", logger.ErrorField(err))
		}
		dataCache = redisCache
		ready = append(ready, redisCache)
	} else {
		memoryCache := cache.NewMemoryCache()
		go sweepCache(memoryCache, cfg.Redis.CacheTTL)
		dataCache = memoryCache
	}
	defer dataCache.Close()
	cachedSource := data.NewCachedSource(source, dataCache, cfg.Redis.CacheTTL)

	// Analysis storage
	analysisStorage, err := storage.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize analysis storage", logger.ErrorField(err))
	}
	defer analysisStorage.Close()
	ready = append(ready, analysisStorage)

	service, err := analysis.NewService(analysis.Config{
		Series:       cachedSource,
		Fundamentals: cachedSource,
		Rules:        ruleStore,
		Engine:       engine,
		Computer:     indicator.NewComputer(engineCfg.Indicators),
		Storage:      analysisStorage,
		Defaults:     analysis.Options{Period: cfg.Data.Period, Interval: cfg.Data.Interval},
	})
	if err != nil {
		logger.Fatal("Failed to create analysis service", logger.ErrorField(err))
	}

	// Scheduled jobs
	schedCfg := scheduler.Config{
		ReloadCron: cfg.Rules.ReloadCron,
		Watchlist:  cfg.Scheduler.Watchlist,
		Options:    analysis.Options{Period: cfg.Data.Period, Interval: cfg.Data.Interval},
	}
	if cfg.Scheduler.Enabled {
		schedCfg.WatchlistCron = cfg.Scheduler.Cron
	}
	sched, err := scheduler.New(schedCfg, service, ruleStore)
	if err != nil {
		logger.Fatal("Failed to create scheduler", logger.ErrorField(err))
	}
	sched.Start()

	// HTTP API
	deps := api.Deps{
		Service: service,
		Storage: analysisStorage,
		Ready:   ready,
	}
	if searcher, ok := source.(data.Searcher); ok {
		deps.Searcher = searcher
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      api.NewHandler(deps, cfg.API.JWTSecret, cfg.API.RateLimitRPS),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
			logger.Bool("auth", cfg.API.JWTSecret != ""),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down stock advisor service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}
	sched.Stop()

	logger.Info("Stock advisor service stopped")
}

// sweepCache drops expired entries from the in-process cache
func sweepCache(c *cache.MemoryCache, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for range ticker.C {
		if n := c.Sweep(); n > 0 {
			logger.Debug("Swept expired cache entries", logger.Int("count", n))
		}
	}
}
