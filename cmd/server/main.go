// Package main is the entry point for the vendorbook API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"vendorbook/internal/config"
	"vendorbook/internal/domain/auth"
	"vendorbook/internal/domain/catalogs/item"
	"vendorbook/internal/domain/catalogs/vendor"
	"vendorbook/internal/domain/reports"
	"vendorbook/internal/domain/sales"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/infrastructure/cache"
	v1 "vendorbook/internal/infrastructure/http/v1"
	"vendorbook/internal/infrastructure/http/v1/handlers"
	"vendorbook/internal/infrastructure/storage/postgres"
	"vendorbook/internal/infrastructure/storage/postgres/catalog_repo"
	"vendorbook/internal/infrastructure/storage/postgres/report_repo"
	"vendorbook/internal/infrastructure/storage/postgres/sales_repo"
	"vendorbook/internal/obs"
	"vendorbook/pkg/logger"
	"vendorbook/pkg/numerator"
)

const metricsNamespace = "vendorbook"

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting vendorbook server", "env", cfg.AppEnv)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.ApplicationName = cfg.ApplicationName
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdle

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	postgres.LogPoolStats(ctx, pool.Pool)

	if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txm := postgres.NewTxManager(pool)

	// --- Session store ---
	healthChecks := map[string]handlers.Pinger{"postgres": pool}

	var store settlement.SessionStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalw("invalid REDIS_URL", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to ping redis", "error", err)
		}
		store = cache.NewSessionStore(rdb, "vendorbook:session", cfg.SessionTTL)
		healthChecks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Infow("sessions stored in redis", "ttl", cfg.SessionTTL)
	} else {
		store = settlement.NewMemoryStore()
		log.Warn("REDIS_URL not set, sessions kept in process memory")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := obs.NewHTTPMetrics(metricsNamespace, nil, reg)
	settlementMetrics := obs.NewSettlementMetrics(metricsNamespace, reg)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// --- Domain ---
	numbers := numerator.NewWithQuerier(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	itemSvc := item.NewService(catalog_repo.NewItemRepo(txm), txm)
	vendorSvc := vendor.NewService(catalog_repo.NewVendorRepo(txm), txm)
	salesSvc := sales.NewService(sales_repo.NewRepo(txm), itemSvc, vendorSvc, numbers, txm)
	reportSvc := reports.NewService(report_repo.NewReportRepo(txm), salesSvc, txm)

	settlementSvc := settlement.NewService(settlement.Config{
		Store:    store,
		Items:    itemSvc,
		Vendors:  vendorSvc,
		Sink:     salesSvc,
		Observer: settlementMetrics,
	})

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtCfg)

	// --- HTTP ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		JWTValidator:       jwtService,
		Items:              itemSvc,
		Vendors:            vendorSvc,
		Settlement:         settlementSvc,
		Sales:              salesSvc,
		VendorSales:        salesSvc,
		Reports:            reportSvc,
		HealthChecks:       healthChecks,
		Metrics:            httpMetrics,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Debug:              cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
