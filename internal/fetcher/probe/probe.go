// Package probe runs a cheap static preflight against the portal before any
// browser session is spent. The disclosure tables themselves need JavaScript,
// so this only answers "is the site up and serving HTML".
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls the preflight collector.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Checker verifies portal reachability with a single GET.
type Checker struct {
	cfg Config
}

// New builds a Checker.
func New(cfg Config) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Checker{cfg: cfg}
}

// Check fetches the URL and fails unless it returns a 2xx with a body that
// plausibly contains the portal page.
func (c *Checker) Check(ctx context.Context, url string) error {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(c.cfg.Timeout)
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}

	var (
		status   int
		bodyLen  int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		bodyLen = len(r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("preflight canceled: %w", err)
	}
	if err := collector.Visit(url); err != nil {
		return fmt.Errorf("preflight visit %s: %w", url, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return fmt.Errorf("preflight fetch %s: %w", url, fetchErr)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("preflight fetch %s: unexpected status %d", url, status)
	}
	if bodyLen < 300 {
		return fmt.Errorf("preflight fetch %s: implausibly small body (%d bytes)", url, bodyLen)
	}
	return nil
}
