package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fsbdata/disclosure-crawler/internal/metrics"
)

func TestDumpLogsEveryScraperCollector(t *testing.T) {
	metrics.Attempts.Inc()
	metrics.TargetSuccesses.Inc()
	metrics.TargetFailures.WithLabelValues("timeout").Inc()
	metrics.FetchDuration.Observe(1.25)

	core, logs := observer.New(zap.InfoLevel)
	metrics.Dump(zap.New(core))

	seen := map[string]bool{}
	var failureClass string
	var histogramCount uint64
	for _, entry := range logs.All() {
		require.Equal(t, "run metric", entry.Message)
		fields := entry.ContextMap()
		name, ok := fields["metric"].(string)
		require.True(t, ok)
		seen[name] = true
		if name == "scraper_attempt_failures_total" {
			failureClass, _ = fields["class"].(string)
		}
		if name == "scraper_target_duration_seconds" {
			histogramCount, _ = fields["count"].(uint64)
		}
	}

	require.True(t, seen["scraper_attempts_total"])
	require.True(t, seen["scraper_target_success_total"])
	require.True(t, seen["scraper_attempt_failures_total"])
	require.True(t, seen["scraper_target_duration_seconds"])
	require.Equal(t, "timeout", failureClass)
	require.GreaterOrEqual(t, histogramCount, uint64(1))
}
