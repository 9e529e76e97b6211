// Package main is the entry point for the arbitrage scanner service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arbscan/internal/aggregator"
	"arbscan/internal/arbitrage"
	"arbscan/internal/cache"
	"arbscan/internal/config"
	"arbscan/internal/provider"
	"arbscan/internal/repository"
	"arbscan/internal/service"
	"arbscan/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App wires the scanner's dependencies together and manages their lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	db       *sql.DB
	rdbCache *redis.Client
	rdbAsynq *redis.Client

	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	httpServer  *http.Server

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// NewApp initializes all dependencies and returns a ready-to-run App. The
// context bounds startup work such as the initial database connect.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	if err := app.initStorage(ctx); err != nil {
		_ = app.close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) onClose(name string, fn func() error) {
	app.closers = append(app.closers, namedCloser{name: name, close: fn})
}

// close releases connections in reverse open order, so consumers go away
// before the stores they talk to.
func (app *App) close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		c := app.closers[i]
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) initStorage(ctx context.Context) error {
	db, err := repository.OpenDB(ctx, &app.cfg.Database)
	if err != nil {
		return fmt.Errorf("open scan store: %w", err)
	}
	app.db = db
	app.onClose("postgres", db.Close)

	if err := repository.RunMigrations(db, app.logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	app.rdbCache = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.CacheAddr})
	app.onClose("redis cache", app.rdbCache.Close)
	if err := app.rdbCache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to storage", "redis_cache", app.cfg.Redis.CacheAddr)
	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.onClose("redis asynq", app.rdbAsynq.Close)
	app.asynqClient = asynq.NewClient(redisOpt)
	app.onClose("asynq client", app.asynqClient.Close)
	app.asynqServer = asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: app.cfg.Worker.Concurrency,
	})
	app.logger.Infow("Queue client ready", "addr", app.cfg.Redis.AsynqAddr)

	venues, err := buildVenues(app.cfg)
	if err != nil {
		return err
	}
	providers := make([]provider.RatesProvider, 0, len(venues))
	for _, v := range venues {
		providers = append(providers, v.Provider)
	}

	rateSource := aggregator.New(providers, app.newAggregatorCache(), app.logger, aggregator.Options{
		CacheTTL:              time.Duration(app.cfg.Aggregator.CacheTTLSec) * time.Second,
		MaxErrorsBeforeSwitch: app.cfg.Aggregator.MaxErrorsBeforeSwitch,
		AutoReorder:           app.cfg.Aggregator.AutoReorder,
		PreferredProvider:     app.cfg.Aggregator.PreferredProvider,
	})

	engine := arbitrage.NewEngine(app.cfg.Arbitrage.MinProfitPct, app.cfg.Arbitrage.StartAmount)
	scanRepo := repository.NewPostgresScanRepository(app.db)
	symbolValidator := service.NewValidator()
	asynqEnqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)
	scanService := service.NewScanService(
		scanRepo,
		rateSource,
		engine,
		venues,
		symbolValidator,
		asynqEnqueuer,
		app.rdbCache,
		app.logger,
		app.cfg)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeRunScan, worker.NewScanHandler(scanService, app.logger))

	app.initHTTP(scanService)
	return nil
}

// newAggregatorCache picks the rate table cache backend. Redis survives
// restarts and is shared between replicas; the in-process map needs no
// extra infrastructure.
func (app *App) newAggregatorCache() aggregator.Cache {
	if app.cfg.Aggregator.CacheBackend == "redis" {
		return cache.NewRedis(app.rdbCache)
	}
	return cache.NewMemory()
}

// buildVenues constructs one provider per enabled config section, paired
// with the trading fee that venue charges in cross-exchange scans.
func buildVenues(cfg *config.Config) ([]service.Venue, error) {
	var venues []service.Venue

	if cfg.CryptoCompare.Enabled && cfg.CryptoCompare.BaseURL != "" {
		p := provider.NewCryptoCompareProvider(
			cfg.CryptoCompare.BaseURL,
			cfg.CryptoCompare.APIKey,
			time.Duration(cfg.CryptoCompare.Timeout)*time.Second,
		)
		venues = append(venues, service.Venue{Provider: p, Fee: decimal.NewFromFloat(cfg.CryptoCompare.VenueFee)})
	}

	if cfg.CoinGecko.Enabled && cfg.CoinGecko.BaseURL != "" {
		p := provider.NewCoinGeckoProvider(
			cfg.CoinGecko.BaseURL,
			cfg.CoinGecko.APIKey,
			time.Duration(cfg.CoinGecko.Timeout)*time.Second,
		)
		venues = append(venues, service.Venue{Provider: p, Fee: decimal.NewFromFloat(cfg.CoinGecko.VenueFee)})
	}

	if cfg.Coinbase.Enabled && cfg.Coinbase.BaseURL != "" {
		p := provider.NewCoinbaseProvider(
			cfg.Coinbase.BaseURL,
			time.Duration(cfg.Coinbase.Timeout)*time.Second,
		)
		venues = append(venues, service.Venue{Provider: p, Fee: decimal.NewFromFloat(cfg.Coinbase.VenueFee)})
	}

	if len(venues) == 0 {
		return nil, fmt.Errorf("no price providers are correctly configured: " +
			"at least one provider section must be enabled with a base_url")
	}

	return venues, nil
}

// Run starts the HTTP server and the Asynq worker, blocking until the context
// is canceled or either of them fails.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Asynq worker starting", "concurrency", app.cfg.Worker.Concurrency)
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("start asynq worker: %w", err)
		}
		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP API listening", "addr", app.httpServer.Addr)
		err := app.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown tears the service down in dependency order: stop taking HTTP
// traffic, let in-flight scan tasks finish, then drop the connections they
// were using.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	app.asynqServer.Shutdown()

	if err := app.close(); err != nil {
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown finished")
	return errors.Join(errs...)
}
