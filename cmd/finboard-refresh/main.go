// finboard-refresh runs the ingest pipeline once: pull new provider
// history into the store, then write today's portfolio snapshot and
// announce it. Scheduling is left to cron or the container orchestrator.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"finboard/internal/api"
	"finboard/internal/bank"
	"finboard/internal/broker"
	"finboard/internal/config"
	"finboard/internal/events"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Refresh failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Refresh complete")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("initialize snapshot store: %w", err)
	}
	defer repo.Close()

	feed := bank.New(cfg.BankBaseURL, cfg.BankToken, api.DefaultPolicy())
	brokerage := broker.New(cfg.BrokerBaseURL, cfg.BrokerUsername, cfg.BrokerPassword, api.DefaultPolicy())

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("initialize event publisher: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	accounts, err := feed.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("fetch accounts: %w", err)
	}
	if len(accounts) == 0 {
		return services.ErrNoAccounts
	}

	ingestor := services.NewIngestor(feed, brokerage, repo)
	now := time.Now()
	cutoff := now.Add(-cfg.OrderWindow)

	// Feed windows and order history have no data dependency, so they
	// ingest in parallel.
	g, gctx := errgroup.WithContext(ctx)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			inserted, err := ingestor.IngestTransactions(gctx, account.UID, account.DefaultCategory, cutoff, now)
			if err != nil {
				return fmt.Errorf("ingest account %s: %w", account.UID, err)
			}
			logger.Info("Account ingested", "account_uid", account.UID, "inserted", inserted)
			return nil
		})
	}
	g.Go(func() error {
		inserted, err := ingestor.IngestOrders(gctx, cutoff)
		if err != nil {
			return fmt.Errorf("ingest orders: %w", err)
		}
		logger.Info("Orders ingested", "inserted", inserted)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snapshotter := services.NewSnapshotter(feed, brokerage, repo, publisher, cfg.USDRateDecimal())
	snapshot, err := snapshotter.WriteDailySnapshot(ctx, accounts[0].UID, now)
	if err != nil {
		return fmt.Errorf("write daily snapshot: %w", err)
	}

	logger.Info("Snapshot written",
		"date", snapshot.Date.UTC().Format(storage.SnapshotDateLayout),
		"net_worth", snapshot.NetWorth.String())
	return nil
}
