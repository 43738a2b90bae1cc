package scrape

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/metrics"
)

// BackoffPolicy produces jittered exponential delays between attempts.
type BackoffPolicy struct {
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewBackoffPolicy builds a policy with sane defaults.
func NewBackoffPolicy() *BackoffPolicy {
	return &BackoffPolicy{
		baseDelay: 500 * time.Millisecond,
		maxDelay:  10 * time.Second,
	}
}

// Backoff returns the wait duration before attempt+1.
func (p *BackoffPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// CoordinatorConfig controls per-target retry behavior.
type CoordinatorConfig struct {
	// MaxAttempts is the total attempt budget per target, fetch included.
	MaxAttempts int
}

// Coordinator wraps fetch+extract for one target with bounded retries. It
// never returns an error: every outcome is a terminal FetchResult.
type Coordinator struct {
	fetcher   Fetcher
	extractor Extractor
	policy    *BackoffPolicy
	cfg       CoordinatorConfig
	logger    *zap.Logger
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(fetcher Fetcher, extractor Extractor, policy *BackoffPolicy, cfg CoordinatorConfig, logger *zap.Logger) *Coordinator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if policy == nil {
		policy = NewBackoffPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		fetcher:   fetcher,
		extractor: extractor,
		policy:    policy,
		cfg:       cfg,
		logger:    logger,
	}
}

// Scrape runs fetch+extract for one target until success or exhaustion.
func (c *Coordinator) Scrape(ctx context.Context, target Target) FetchResult {
	start := time.Now()
	result := FetchResult{Target: target}

	var lastStatus Status
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}
		result.Attempts = attempt + 1
		c.logger.Info("scrape attempt",
			zap.String("bank", target.Name),
			zap.Int("attempt", attempt+1),
			zap.Int("budget", c.cfg.MaxAttempts),
		)
		metrics.Attempts.Inc()

		tables, date, err := c.attempt(ctx, target)
		if err == nil {
			result.Status = StatusSuccess
			result.Tables = tables
			result.DisclosureDate = date
			result.Duration = time.Since(start)
			metrics.TargetSuccesses.Inc()
			metrics.FetchDuration.Observe(result.Duration.Seconds())
			return result
		}

		lastStatus = Classify(err)
		lastErr = err
		c.logger.Warn("scrape attempt failed",
			zap.String("bank", target.Name),
			zap.Int("attempt", attempt+1),
			zap.String("class", string(lastStatus)),
			zap.Error(err),
		)
		metrics.TargetFailures.WithLabelValues(string(lastStatus)).Inc()

		if !Retryable(err) || attempt == c.cfg.MaxAttempts-1 {
			break
		}
		if !sleepCtx(ctx, c.policy.Backoff(attempt)) {
			break
		}
	}

	result.Duration = time.Since(start)
	result.Status = terminalStatus(ctx, lastStatus)
	if lastErr != nil {
		result.ErrorDetail = lastErr.Error()
	} else if ctx.Err() != nil {
		result.ErrorDetail = ctx.Err().Error()
	}
	metrics.FetchDuration.Observe(result.Duration.Seconds())
	return result
}

func (c *Coordinator) attempt(ctx context.Context, target Target) ([]CategoryTable, string, error) {
	page, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, "", err
	}

	tables := make([]CategoryTable, 0, len(page.Categories))
	for _, cat := range page.Categories {
		rows, err := c.extractor.Extract(cat.Category, cat.HTML)
		if err != nil {
			return nil, "", err
		}
		tables = append(tables, CategoryTable{Category: cat.Category, Rows: rows})
	}
	return tables, page.DisclosureDate, nil
}

// terminalStatus maps an exhausted target to its final status. Retryable
// failures that burn the whole budget become exhausted_retries; a run-level
// shutdown mid-target is recorded as a timeout.
func terminalStatus(ctx context.Context, last Status) Status {
	if ctx.Err() != nil && last == "" {
		return StatusTimeout
	}
	return StatusExhausted
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
