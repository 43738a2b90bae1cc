// Package metrics exposes Prometheus collectors for the scrape pipeline.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	// Attempts tracks every fetch+extract attempt, retries included.
	Attempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_attempts_total",
		Help: "The total number of scrape attempts dispatched.",
	})
	// TargetSuccesses tracks targets that reached a success terminal state.
	TargetSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_target_success_total",
		Help: "The total number of targets scraped successfully.",
	})
	// TargetFailures tracks failed attempts by failure class.
	TargetFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_attempt_failures_total",
		Help: "The total number of failed attempts, labeled by failure class.",
	}, []string{"class"})
	// FetchDuration observes end-to-end per-target durations.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scraper_target_duration_seconds",
		Help:    "Time spent per target including retries.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

// Dump gathers the scraper collectors and writes their final values to the
// logger. A batch run has no scrape endpoint, so this is the export path: the
// counters end up in the run's structured log.
func Dump(logger *zap.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logger.Warn("gather metrics failed", zap.Error(err))
		return
	}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "scraper_") {
			continue
		}
		for _, metric := range family.GetMetric() {
			fields := []zap.Field{zap.String("metric", family.GetName())}
			for _, label := range metric.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			switch {
			case metric.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", metric.GetHistogram().GetSampleCount()),
					zap.Float64("sum_seconds", metric.GetHistogram().GetSampleSum()),
				)
			default:
				continue
			}
			logger.Info("run metric", fields...)
		}
	}
}
