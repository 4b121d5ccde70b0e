package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vexpenses/internal/amqp"
	"vexpenses/internal/cache"
	"vexpenses/internal/config"
	apphttp "vexpenses/internal/http"
	"vexpenses/internal/importer"
	"vexpenses/internal/insights"
	"vexpenses/internal/log"
	"vexpenses/internal/refdata"
	"vexpenses/internal/services"
	"vexpenses/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production).
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// State is seeded from the static reference data and lives in process
	// memory only.
	st := store.New(refdata.Transactions(), refdata.Collaborators())

	// Event trail is optional; without an AMQP URL mutations simply are not
	// published.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("AMQP event trail enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP event trail disabled - no AMQP_URL provided")
	}

	svc := services.NewExpenseService(st, events, logger)

	// The AI advisor is best-effort: if the client cannot be created the
	// insights endpoint serves its fallback message.
	var gen insights.Generator
	if g, err := insights.NewGemini(ctx, cfg.InsightsModel); err != nil {
		logger.Warn("AI advisor unavailable", log.FieldError, err)
	} else {
		gen = g
	}
	insightsSvc := insights.NewService(gen, cfg.InsightsCacheTTL, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register(insightsSvc.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	pipeline := importer.New(st, importer.Lists{
		CostCenters:    refdata.CostCenters,
		Units:          refdata.Units,
		Categories:     refdata.Categories,
		PaymentMethods: refdata.PaymentMethods,
	}, importer.Options{
		InspectDelay: cfg.ImportInspectDelay,
		SettleDelay:  cfg.ImportSettleDelay,
	})

	srv := apphttp.NewServer(":"+cfg.Port, st, svc, pipeline, insightsSvc, refdata.Seed())
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting vexpenses server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
