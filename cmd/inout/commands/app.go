package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/wonny/inout/backend/internal/api"
	"github.com/wonny/inout/backend/internal/contracts"
	"github.com/wonny/inout/backend/internal/engine"
	"github.com/wonny/inout/backend/internal/execution"
	"github.com/wonny/inout/backend/internal/journal"
	"github.com/wonny/inout/backend/internal/observability"
	"github.com/wonny/inout/backend/internal/pricefeed"
	"github.com/wonny/inout/backend/internal/statestore"
	"github.com/wonny/inout/backend/internal/strategyconfig"
	"github.com/wonny/inout/backend/pkg/config"
	"github.com/wonny/inout/backend/pkg/database"
	"github.com/wonny/inout/backend/pkg/httputil"
	"github.com/wonny/inout/backend/pkg/logger"
	"github.com/wonny/inout/backend/pkg/redis"
)

// breakerOpenFor: 회로 차단 후 재시도까지 대기
const breakerOpenFor = 30 * time.Second

// app holds every wired collaborator of a running engine
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	hash     string
	log      *logger.Logger

	db       *database.DB // nil without DATABASE_URL
	redis    *redis.Client
	store    statestore.Store
	registry *prometheus.Registry
	recorder *observability.Recorder
	stream   *api.Stream
	engine   *engine.Engine
}

// newApp loads configuration, connects the configured backends and restores
// the engine state.
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy
	strategy, hash, err := loadStrategy(cfg.StrategyFile, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		strategy: strategy,
		hash:     hash,
		log:      log,
		registry: prometheus.NewRegistry(),
		recorder: observability.NewRecorder(500),
		stream:   api.NewStream(log),
	}

	// 4. Backends
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		log.Info("Database connected")
	}

	rc, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = rc

	prices, err := a.priceSource()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store, err = statestore.FromConfig(cfg.State, rc)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 5. Publishers
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	publishers := observability.Multi{a.recorder, a.stream}
	if cfg.MetricsEnabled {
		publishers = append(publishers, observability.NewMetrics(a.registry))
	}

	deps := engine.Deps{
		Prices:    prices,
		Executor:  a.executor(),
		Publisher: publishers,
		Store:     a.store,
	}
	if a.db != nil {
		deps.Journal = journal.NewPostgresJournal(a.db.Pool, hash)
	}

	// 6. Engine
	a.engine, err = engine.New(strategy, deps, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.engine.Restore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the backends
func (a *app) Close() {
	a.stream.Close()
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Redis close failed")
		}
	}
}

// priceSource builds the configured PriceSource
func (a *app) priceSource() (contracts.PriceSource, error) {
	cfg := a.cfg
	switch cfg.Prices.Source {
	case config.PriceSourcePostgres:
		if a.db == nil {
			return nil, fmt.Errorf("price source postgres needs DATABASE_URL")
		}
		return pricefeed.NewPostgresSource(a.db.Pool, a.log), nil

	case config.PriceSourceHTTP:
		client := httputil.New(a.log).
			WithBreaker("price_api", breakerOpenFor).
			WithRateLimiter(a.limiter(redis.PriceAPIRateLimit(cfg.Prices.RequestsPerS), cfg.Prices.RequestsPerS))
		if cfg.Prices.APIKey != "" {
			client = client.WithHeader("X-API-Key", cfg.Prices.APIKey)
		}
		src := pricefeed.NewHTTPSource(client, cfg.Prices.APIURL, a.log)
		if a.redis.Enabled() {
			src = src.WithCache(redis.NewCache(a.redis, "inout"))
		}
		return src, nil

	case config.PriceSourceCSV:
		src, err := pricefeed.OpenCSV(cfg.Prices.CSVPath)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown price source %q", cfg.Prices.Source)
}

// executor returns the HTTP broker when BROKER_URL is set, paper mode otherwise
func (a *app) executor() contracts.Executor {
	cfg := a.cfg
	if cfg.Broker.URL == "" {
		a.log.Warn("BROKER_URL not set, running in paper mode")
		return execution.NewPaperExecutor(a.log)
	}

	perSecond := float64(redis.BrokerRateLimit.Limit) / redis.BrokerRateLimit.Window.Seconds()
	client := httputil.NewWithTimeout(a.log, cfg.Broker.Timeout).
		WithBreaker("broker", breakerOpenFor).
		WithRateLimiter(a.limiter(redis.BrokerRateLimit, perSecond))
	if cfg.Broker.APIKey != "" {
		client = client.WithHeader("X-API-Key", cfg.Broker.APIKey)
	}
	return execution.NewHTTPBroker(client, cfg.Broker.URL, a.log)
}

// limiter shares the window across processes through Redis when enabled,
// and falls back to a local token bucket otherwise.
func (a *app) limiter(shared redis.RateLimitConfig, perSecond float64) httputil.Limiter {
	if a.redis != nil && a.redis.Enabled() {
		return redis.NewRateLimiter(a.redis, "inout").Bind(shared)
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// loadStrategy reads the strategy YAML. A missing file falls back to the
// built-in defaults.
func loadStrategy(path string, log *logger.Logger) (*strategyconfig.Config, string, error) {
	strategy, _, err := strategyconfig.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("path", path).Warn("Strategy file not found, using defaults")
		strategy = strategyconfig.Default()
	case err != nil:
		return nil, "", fmt.Errorf("load strategy %s: %w", path, err)
	}

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, "", fmt.Errorf("hash strategy: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"version":     strategy.Meta.Version,
		"hash":        hash[:12],
	}).Info("Strategy loaded")
	return strategy, hash, nil
}

// cliLogger is used by commands that do not need process config
func cliLogger() *logger.Logger {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(os.Stderr, level)
}
