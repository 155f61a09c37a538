package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvasquez/pricegrid-backend/api/controllers"
	"github.com/mvasquez/pricegrid-backend/api/routes"
	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	quotesvc "github.com/mvasquez/pricegrid-backend/internal/quote"
	"github.com/mvasquez/pricegrid-backend/pkg/config"
	"github.com/mvasquez/pricegrid-backend/pkg/db"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
	"github.com/mvasquez/pricegrid-backend/pkg/metrics"
	"github.com/mvasquez/pricegrid-backend/pkg/migrate"
	"github.com/mvasquez/pricegrid-backend/pkg/pubsub"
	"github.com/mvasquez/pricegrid-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	quoteRepo := quotesvc.NewRepository(dbClient.DB())

	registry := prometheus.NewRegistry()
	quoteMetrics := metrics.NewQuoteMetrics(registry)

	health := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	var quoteSink quotesvc.EventSink
	var catalogSink catalog.EventSink
	if cfg.FeatureFlags.QuoteEvents {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer pubsubClient.Close()
		quoteSink = quotesvc.NewPubSubSink(pubsubClient.QuotePublisher(), cfg.Quote.PublishTimeout)
		catalogSink = catalog.NewPubSubSink(pubsubClient.CatalogPublisher(), cfg.Catalog.PublishTimeout)
		health["pubsub"] = pubsubClient
	}

	catalogService := catalog.NewServiceWithOptions(dbClient, catalog.Options{
		Cache:    redisClient,
		CacheTTL: cfg.Catalog.CacheTTL,
		Events:   catalogSink,
		Logger:   logg,
	})

	quoteService := quotesvc.NewService(catalogService, quotesvc.Options{
		Repo:     quoteRepo,
		Cache:    redisClient,
		CacheTTL: cfg.Quote.CacheTTL,
		Events:   quoteSink,
		Metrics:  quoteMetrics,
		Logger:   logg,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Health:      health,
			Idempotency: redisClient,
			Catalog:     catalogService,
			Quotes:      quoteService,
			QuoteRepo:   quoteRepo,
			Registry:    registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
