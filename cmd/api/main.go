package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coin-prices-service/internal/application/services"
	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/config"
	"coin-prices-service/internal/infrastructure/exchange"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/metrics"
	"coin-prices-service/internal/infrastructure/repositories/cache"
	"coin-prices-service/internal/infrastructure/web"
	"coin-prices-service/internal/infrastructure/web/server"
)

// @title Coin Prices Service API
// @version 1.0
// @description Aggregates last traded coin prices from several exchanges and serves them per base coin.
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := initLogging(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	ctx := logging.WithRequestID(context.Background(), logging.GenerateShortRequestID())
	logging.Info(ctx, "Starting Coin Prices Service", logging.Fields{
		"version":     cfg.Logging.Version,
		"environment": cfg.Logging.Environment,
		"exchanges":   len(cfg.Exchanges),
	})

	priceCache, err := cache.NewFactory().CreateCache(ctx, cacheConfig(cfg.Cache))
	if err != nil {
		logging.ErrorWithError(ctx, "Failed to create cache", err, logging.Fields{
			logging.FieldCacheBackend: cfg.Cache.Backend,
		})
		os.Exit(1)
	}
	defer priceCache.Close()

	metrics.SetApplicationInfo(cfg.Logging.Version, cfg.Cache.Backend)

	var fetcher interfaces.Fetcher
	if cfg.Development.MockMode {
		logging.Warn(ctx, "Mock mode enabled, exchanges will not be contacted", nil)
		fetcher = exchange.NewMockFetcher()
	} else {
		fetcher = exchange.NewRestFetcher(exchange.RetryPolicy{
			MaxAttempts:    cfg.Fetch.MaxAttempts,
			BaseDelay:      cfg.Fetch.BaseDelay,
			MaxDelay:       cfg.Fetch.MaxDelay,
			RequestTimeout: cfg.Fetch.RequestTimeout,
		})
	}

	aggregator := services.NewPriceAggregator(
		fetcher,
		exchange.DefaultRegistry(),
		priceCache,
		cfg.EndpointOptions(),
		cfg.Cache.TTL,
	)
	aggregator.SetParseTimeout(warmupTimeout(cfg))
	query := services.NewPriceQueryService(aggregator, priceCache)

	router := web.NewRouter(web.RouterOptions{
		Query:          query,
		Cache:          priceCache,
		APIPrefix:      cfg.API.Prefix,
		DefaultQuote:   cfg.Business.DefaultQuoteCoin,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.RateLimit,
	})
	srv := server.NewServer(router, cfg.Server, cfg.API.Prefix)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()

	if cfg.Cache.Warmup {
		go warmup(refreshCtx, aggregator, cfg.Business.DefaultQuoteCoin, warmupTimeout(cfg))
	}

	if cfg.Cache.RefreshInterval > 0 {
		go startPriceRefreshRoutine(refreshCtx, aggregator, cfg.Business.DefaultQuoteCoin, cfg.Cache.RefreshInterval)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Info(ctx, "Shutdown signal received", logging.Fields{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			logging.ErrorWithError(ctx, "HTTP server failed", err, nil)
		}
	}

	stopRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.ErrorWithError(ctx, "Server forced to shutdown", err, nil)
	}

	logging.Info(ctx, "Server shutdown completed", nil)
}

func initLogging(cfg config.LoggingConfig) error {
	loggerConfig := logging.NewConfig(cfg.Service, cfg.Version, cfg.Environment).
		WithLevel(logging.LogLevelFromString(cfg.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Format)).
		WithSource(cfg.AddSource)

	return logging.InitializeGlobalLoggers(loggerConfig)
}

func cacheConfig(cfg config.CacheConfig) cache.Config {
	return cache.Config{
		Type:                    cache.CacheType(cfg.Backend),
		RedisAddr:               cfg.Redis.Addr,
		RedisPassword:           cfg.Redis.Password,
		RedisDB:                 cfg.Redis.DB,
		MemcachedAddress:        cfg.Memcached.Address,
		MemcachedPort:           cfg.Memcached.Port,
		MemcachedConnectTimeout: cfg.Memcached.ConnectTimeout,
		MemcachedTimeout:        cfg.Memcached.Timeout,
	}
}

// warmupTimeout covers every exchange exhausting its retry budget. It also
// bounds every shared parse pass.
func warmupTimeout(cfg *config.Config) time.Duration {
	perExchange := (cfg.Fetch.RequestTimeout + cfg.Fetch.MaxDelay) * time.Duration(cfg.Fetch.MaxAttempts)
	return perExchange * time.Duration(len(cfg.Exchanges))
}

// warmup fills the cache once so the first request does not pay for the fetch.
func warmup(ctx context.Context, aggregator *services.PriceAggregator, quoteCoin string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	points, err := aggregator.Parse(ctx, quoteCoin)
	if err != nil {
		logging.WarnWithError(ctx, "Failed to pre-warm cache", err, logging.Fields{
			logging.FieldQuoteCoin: quoteCoin,
		})
		return
	}

	logging.Info(ctx, "Cache pre-warmed successfully", logging.Fields{
		logging.FieldQuoteCoin: quoteCoin,
		logging.FieldPoints:    len(points),
	})
}

// startPriceRefreshRoutine re-parses before entries expire so reads stay warm.
func startPriceRefreshRoutine(ctx context.Context, aggregator *services.PriceAggregator, quoteCoin string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info(ctx, "Starting background price refresh routine", logging.Fields{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := aggregator.Parse(ctx, quoteCoin); err != nil {
				logging.WarnWithError(ctx, "Background price refresh failed", err, logging.Fields{
					logging.FieldQuoteCoin: quoteCoin,
				})
			}
		}
	}
}
