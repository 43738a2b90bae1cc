package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ScrapeFunc produces the terminal FetchResult for one target.
type ScrapeFunc func(ctx context.Context, target Target) FetchResult

// Pool fans targets out over a bounded set of workers. Workers never share
// mutable state: each result travels back on a channel and the pool merges
// after all workers finish, restoring enumerator order.
type Pool struct {
	workers int
	logger  *zap.Logger
}

// NewPool constructs a Pool with the given parallelism.
func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{workers: workers, logger: logger}
}

// Run scrapes every target and returns exactly one FetchResult per target,
// in the original target order. A single target's failure never aborts the
// pool; Run returns only when every target has a terminal result.
func (p *Pool) Run(ctx context.Context, targets []Target, scrape ScrapeFunc) []FetchResult {
	jobs := make(chan Target)
	resultCh := make(chan FetchResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for target := range jobs {
				resultCh <- scrape(ctx, target)
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, t := range targets {
			select {
			case jobs <- t:
			case <-ctx.Done():
				// Drain remaining targets as terminal timeouts so the
				// one-result-per-target invariant still holds.
				resultCh <- FetchResult{
					Target:      t,
					Status:      StatusTimeout,
					ErrorDetail: ctx.Err().Error(),
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	byID := make(map[string]FetchResult, len(targets))
	for res := range resultCh {
		byID[res.Target.ID] = res
		p.logger.Debug("target finished",
			zap.String("bank", res.Target.Name),
			zap.String("status", string(res.Status)),
			zap.Int("attempts", res.Attempts),
		)
	}

	out := make([]FetchResult, 0, len(targets))
	for _, t := range targets {
		if res, ok := byID[t.ID]; ok {
			out = append(out, res)
			continue
		}
		out = append(out, FetchResult{
			Target:      t,
			Status:      StatusTimeout,
			ErrorDetail: "no result produced",
		})
	}
	return out
}
