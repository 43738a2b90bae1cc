package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/app"
	"github.com/fsbdata/disclosure-crawler/internal/clock/system"
	"github.com/fsbdata/disclosure-crawler/internal/config"
	"github.com/fsbdata/disclosure-crawler/internal/extract"
	"github.com/fsbdata/disclosure-crawler/internal/fetcher/headless"
	"github.com/fsbdata/disclosure-crawler/internal/fetcher/probe"
	"github.com/fsbdata/disclosure-crawler/internal/history"
	"github.com/fsbdata/disclosure-crawler/internal/id/uuid"
	"github.com/fsbdata/disclosure-crawler/internal/logging"
	"github.com/fsbdata/disclosure-crawler/internal/notify"
	"github.com/fsbdata/disclosure-crawler/internal/publisher/pubsub"
	"github.com/fsbdata/disclosure-crawler/internal/report"
	"github.com/fsbdata/disclosure-crawler/internal/scrape"
	"github.com/fsbdata/disclosure-crawler/internal/storage/gcs"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs one full collection pass over every bank",
		Long: `Scrapes every bank's disclosure page with a bounded worker pool,
retries transient failures with backoff, writes the dated archive, and sends
the report email. Individual bank failures are recorded, not fatal.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	application, cleanup, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	outcome, err := application.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("run complete",
		zap.String("run_id", outcome.Summary.RunID),
		zap.Int("success", outcome.Summary.SuccessCount),
		zap.Int("failure", outcome.Summary.FailureCount),
		zap.Float64("rate", outcome.Summary.SuccessRate()),
		zap.String("archive", outcome.Bundle.ZipPath),
	)
	return nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fetcher, err := headless.New(headless.Config{
		MaxParallel:     cfg.MaxWorkers,
		UserAgent:       cfg.UserAgent,
		PageLoadTimeout: cfg.PageLoadTimeout,
		WaitTimeout:     cfg.WaitTimeout,
	}, logger.Named("fetch"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}
	closers = append(closers, fetcher.Close)

	coordinator := scrape.NewCoordinator(
		fetcher,
		extract.NewTableExtractor(),
		scrape.NewBackoffPolicy(),
		scrape.CoordinatorConfig{MaxAttempts: cfg.MaxRetries},
		logger.Named("scrape"),
	)

	packager, err := report.NewPackager(cfg.OutputDir, logger.Named("report"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init packager: %w", err)
	}

	application := &app.App{
		Targets: scrape.Targets(),
		Scrape:  coordinator.Scrape,
		Pool:    scrape.NewPool(cfg.MaxWorkers, logger.Named("pool")),
		Probe: probe.New(probe.Config{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.PageLoadTimeout,
		}),
		Packager: packager,
		Notifier: notify.NewMailer(notify.Config{
			SMTPHost:   cfg.SMTPHost,
			SMTPPort:   cfg.SMTPPort,
			Address:    cfg.GmailAddress,
			Password:   cfg.GmailAppPassword,
			Recipients: cfg.RecipientEmails,
		}, logger.Named("notify")),
		CompletionTopic: cfg.CompletionTopic,
		Clock:           system.New(),
		IDs:             uuid.NewGenerator(),
		Logger:          logger,
	}

	if cfg.ArchiveBucket != "" {
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init storage client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.ArchiveBucket})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init blob store: %w", err)
		}
		application.Blobs = store
	}

	if cfg.HistoryDSN != "" {
		store, err := history.NewStore(ctx, history.Config{DSN: cfg.HistoryDSN})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init history store: %w", err)
		}
		closers = append(closers, store.Close)
		application.History = store
	}

	if cfg.CompletionTopic != "" {
		client, err := gcpubsub.NewClient(ctx, cfg.PubSubProject)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init pubsub client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		application.Publisher = pubsub.New(client)
	}

	return application, cleanup, nil
}
