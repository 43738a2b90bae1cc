// Package app orchestrates one crawl run end to end: preflight, scrape,
// aggregate, package, archive, record, notify.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/disclosure"
	"github.com/fsbdata/disclosure-crawler/internal/metrics"
	"github.com/fsbdata/disclosure-crawler/internal/report"
	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

// Preflight checks portal reachability before any browser session is spent.
type Preflight interface {
	Check(ctx context.Context, url string) error
}

// Packager turns aggregated results into files on disk.
type Packager interface {
	Package(agg report.Aggregated) (report.Bundle, error)
}

// Notifier delivers the run report.
type Notifier interface {
	Send(agg report.Aggregated, attachmentPath string) error
}

// App wires every subsystem for one run. Optional fields (Blobs, History,
// Publisher) are skipped when nil.
type App struct {
	Targets  []scrape.Target
	Scrape   scrape.ScrapeFunc
	Pool     *scrape.Pool
	Probe    Preflight
	Packager Packager
	Notifier Notifier

	Blobs           scrape.BlobStore
	History         scrape.RunStore
	Publisher       scrape.Publisher
	CompletionTopic string

	Clock  scrape.Clock
	IDs    scrape.IDGenerator
	Logger *zap.Logger
}

// Outcome summarizes a finished run for the caller.
type Outcome struct {
	Summary scrape.RunSummary
	Bundle  report.Bundle
}

// Run executes one crawl. Individual target failures never fail the run;
// only infrastructure errors (no archive, undeliverable report) do.
func (a *App) Run(ctx context.Context) (Outcome, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runID, err := a.IDs.NewID()
	if err != nil {
		return Outcome{}, fmt.Errorf("generate run id: %w", err)
	}
	runDate := a.Clock.Now()
	expectedPeriod, periodReason := disclosure.Expected(runDate)

	logger.Info("run starting",
		zap.String("run_id", runID),
		zap.Int("targets", len(a.Targets)),
		zap.String("expected_period", expectedPeriod),
	)

	if a.Probe != nil {
		if err := a.Probe.Check(ctx, scrape.BaseURL); err != nil {
			return Outcome{}, fmt.Errorf("portal preflight: %w", err)
		}
		logger.Info("portal preflight passed", zap.String("url", scrape.BaseURL))
	}

	start := time.Now()
	results := a.Pool.Run(ctx, a.Targets, a.Scrape)
	elapsed := time.Since(start)

	agg := report.Aggregate(runID, runDate, elapsed, results, expectedPeriod, periodReason)
	logger.Info("scrape finished",
		zap.Int("success", agg.Summary.SuccessCount),
		zap.Int("failure", agg.Summary.FailureCount),
		zap.Float64("rate", agg.Summary.SuccessRate()),
		zap.Duration("elapsed", elapsed),
	)
	metrics.Dump(logger)

	bundle, err := a.Packager.Package(agg)
	if err != nil {
		return Outcome{Summary: agg.Summary}, fmt.Errorf("package artifacts: %w", err)
	}

	a.archive(ctx, logger, bundle)
	a.record(ctx, logger, agg.Summary)
	a.publish(ctx, logger, agg.Summary, bundle)

	attachment := bundle.ZipPath
	if attachment == "" {
		// Fall back to the bare summary so the report still carries data.
		attachment = bundle.SummaryPath
	}
	if a.Notifier != nil {
		if err := a.Notifier.Send(agg, attachment); err != nil {
			return Outcome{Summary: agg.Summary, Bundle: bundle}, err
		}
	}

	return Outcome{Summary: agg.Summary, Bundle: bundle}, nil
}

// archive uploads the zip to the blob store. Best effort: the local copy is
// the artifact of record.
func (a *App) archive(ctx context.Context, logger *zap.Logger, bundle report.Bundle) {
	if a.Blobs == nil || bundle.ZipPath == "" {
		return
	}
	data, err := os.ReadFile(bundle.ZipPath)
	if err != nil {
		logger.Error("read archive for upload", zap.Error(err))
		return
	}
	uri, err := a.Blobs.PutObject(ctx, filepath.Base(bundle.ZipPath), "application/zip", data)
	if err != nil {
		logger.Error("archive upload failed", zap.Error(err))
		return
	}
	logger.Info("archive uploaded", zap.String("uri", uri))
}

func (a *App) record(ctx context.Context, logger *zap.Logger, summary scrape.RunSummary) {
	if a.History == nil {
		return
	}
	if err := a.History.RecordRun(ctx, summary); err != nil {
		logger.Error("record run history failed", zap.Error(err))
		return
	}
	logger.Info("run history recorded", zap.String("run_id", summary.RunID))
}

func (a *App) publish(ctx context.Context, logger *zap.Logger, summary scrape.RunSummary, bundle report.Bundle) {
	if a.Publisher == nil || a.CompletionTopic == "" {
		return
	}
	payload := map[string]any{
		"run_id":        summary.RunID,
		"run_date":      summary.RunDate.Format("2006-01-02"),
		"total":         summary.TotalTargets,
		"success":       summary.SuccessCount,
		"failure":       summary.FailureCount,
		"success_rate":  summary.SuccessRate(),
		"archive":       filepath.Base(bundle.ZipPath),
		"expected_date": summary.ExpectedPeriod,
	}
	id, err := a.Publisher.Publish(ctx, a.CompletionTopic, payload)
	if err != nil {
		logger.Error("publish completion event failed", zap.Error(err))
		return
	}
	logger.Info("completion event published", zap.String("message_id", id))
}
