package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/finops-tools/dailyalloc/internal/allocation"
	"github.com/finops-tools/dailyalloc/internal/bank"
	"github.com/finops-tools/dailyalloc/internal/config"
	"github.com/finops-tools/dailyalloc/internal/customer"
	"github.com/finops-tools/dailyalloc/internal/logging"
	"github.com/finops-tools/dailyalloc/internal/notify"
	"github.com/finops-tools/dailyalloc/internal/pipeline"
	"github.com/finops-tools/dailyalloc/internal/upload"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	notifier := notify.NewFailureNotifier(logger,
		notify.NewWebhookChannel(cfg.WebhookURL, client),
		notify.NewEmailChannel(cfg.SMTPAddr, cfg.AlertEmail, cfg.AlertEmailPassword, cfg.AlertEmailTo),
	)

	pipe, err := pipeline.New(pipeline.Deps{
		Feed:         bank.NewHTTPFeed(cfg.BankFeedURL, client),
		Sink:         upload.NewHTTPSink(cfg.UploadURL, client),
		Customers:    customer.NewHTTPResolver(cfg.CustomerAPIURL, client),
		Allocator:    allocation.NewHTTPAllocator(cfg.AllocationAPIURL, client),
		Notifier:     notifier,
		Logger:       logger,
		ResolveLimit: cfg.ResolveConcurrency,
	})
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcomes, err := pipe.Run(ctx)
	if err != nil {
		logger.Error("allocation run failed", "error", err)
		os.Exit(1)
	}

	for _, o := range outcomes {
		if o.Status == allocation.StatusFailed {
			logger.Warn("allocation declined",
				"transaction_id", o.TransactionID, "customer_id", o.CustomerID)
		}
	}
}
