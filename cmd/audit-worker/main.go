// The audit worker tails the mutation event trail and writes a structured
// audit log of every dashboard mutation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vexpenses/internal/amqp"
	"vexpenses/internal/config"
	"vexpenses/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeEvents(ctx, func(event *amqp.MutationEvent) error {
			logger.Info("Mutation recorded",
				log.FieldEventKind, event.Kind,
				log.FieldTransaction, event.TransactionID,
				log.FieldSourceFile, event.SourceFile,
				log.FieldRowCount, event.Rows,
				"occurred_at", event.OccurredAt)
			return nil
		})
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Audit worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Audit worker stopped gracefully")
}
