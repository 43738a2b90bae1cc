// Package headless fetches disclosure pages with a real browser, since the
// portal renders its tables with JavaScript.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config controls the behavior of the headless fetcher.
type Config struct {
	// MaxParallel bounds concurrent browser tabs. Zero means unlimited.
	MaxParallel int
	UserAgent   string
	// PageLoadTimeout bounds navigation per attempt.
	PageLoadTimeout time.Duration
	// WaitTimeout bounds each element/tab wait per attempt.
	WaitTimeout time.Duration
	Categories  []string
}

// Fetcher implements scrape.Fetcher using chromedp and headless Chrome. One
// exec allocator is shared; each Fetch opens and tears down its own tab so a
// timed-out attempt never leaks an OS process.
type Fetcher struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// New creates a headless fetcher backed by chromedp.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.PageLoadTimeout <= 0 {
		cfg.PageLoadTimeout = 30 * time.Second
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = scrape.Categories
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close cancels the allocator context, killing the browser.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch loads the portal, selects the bank, and returns the rendered HTML of
// every category tab plus the page's disclosure date.
func (f *Fetcher) Fetch(ctx context.Context, target scrape.Target) (scrape.Page, error) {
	if err := f.acquire(ctx); err != nil {
		return scrape.Page{}, err
	}
	defer f.release()

	taskCtx, taskCancel := chromedp.NewContext(f.allocator)
	defer taskCancel()

	if err := f.navigate(ctx, taskCtx, target); err != nil {
		return scrape.Page{}, err
	}
	if err := f.selectBank(ctx, taskCtx, target); err != nil {
		return scrape.Page{}, err
	}

	date := f.disclosureDate(taskCtx)

	var categories []scrape.CategoryHTML
	for _, category := range f.cfg.Categories {
		html, err := f.fetchCategory(ctx, taskCtx, target, category)
		if err != nil {
			f.logger.Warn("category tab failed",
				zap.String("bank", target.Name),
				zap.String("category", category),
				zap.Error(err),
			)
			continue
		}
		categories = append(categories, scrape.CategoryHTML{Category: category, HTML: html})
	}

	if len(categories) == 0 {
		return scrape.Page{}, scrape.Transient("categories", fmt.Errorf("no category tab rendered for %s", target.Name))
	}

	return scrape.Page{DisclosureDate: date, Categories: categories}, nil
}

func (f *Fetcher) navigate(ctx, taskCtx context.Context, target scrape.Target) error {
	if err := ctx.Err(); err != nil {
		return scrape.Transient("navigate", err)
	}
	navCtx, cancel := context.WithTimeout(taskCtx, f.cfg.PageLoadTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		f.sessionSetup(),
		chromedp.Navigate(target.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return scrape.Transient("navigate", err)
	}
	return nil
}

func (f *Fetcher) selectBank(ctx, taskCtx context.Context, target scrape.Target) error {
	if err := ctx.Err(); err != nil {
		return scrape.Transient("select bank", err)
	}
	waitCtx, cancel := f.opCtx(taskCtx)
	defer cancel()

	var clicked bool
	err := chromedp.Run(waitCtx,
		chromedp.Evaluate(selectBankScript(target.Name), &clicked),
	)
	if err != nil {
		return scrape.Transient("select bank", err)
	}
	if !clicked {
		return scrape.Transient("select bank", fmt.Errorf("bank %q not found on portal page", target.Name))
	}
	if err := f.waitForTable(taskCtx); err != nil {
		return err
	}
	return nil
}

func (f *Fetcher) fetchCategory(ctx, taskCtx context.Context, target scrape.Target, category string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", scrape.Transient("category", err)
	}

	clickCtx, cancelClick := f.opCtx(taskCtx)
	defer cancelClick()
	var clicked bool
	if err := chromedp.Run(clickCtx, chromedp.Evaluate(selectCategoryScript(category), &clicked)); err != nil {
		return "", scrape.Transient("category click", err)
	}
	if !clicked {
		return "", scrape.Transient("category click", fmt.Errorf("tab %q not found", category))
	}
	if err := f.waitForTable(taskCtx); err != nil {
		return "", err
	}

	// Fresh deadline: the table wait may have consumed most of its own.
	htmlCtx, cancelHTML := f.opCtx(taskCtx)
	defer cancelHTML()
	var html string
	if err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", scrape.Transient("category html", err)
	}
	return html, nil
}

// opCtx bounds a single browser operation. Every wait gets its own deadline
// so a slow-but-successful step never starves the next one.
func (f *Fetcher) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, f.cfg.WaitTimeout)
}

func (f *Fetcher) waitForTable(taskCtx context.Context) error {
	waitCtx, cancel := f.opCtx(taskCtx)
	defer cancel()

	var ready bool
	err := chromedp.Run(waitCtx,
		chromedp.Poll(tableReadyScript, &ready, chromedp.WithPollingInterval(200*time.Millisecond)),
	)
	if err != nil {
		return scrape.Transient("wait table", err)
	}
	return nil
}

// disclosureDate is best-effort: a page without a recognizable date is still
// scraped, it just gets flagged by the period check downstream.
func (f *Fetcher) disclosureDate(taskCtx context.Context) string {
	dateCtx, cancel := f.opCtx(taskCtx)
	defer cancel()

	var date string
	if err := chromedp.Run(dateCtx, chromedp.Evaluate(disclosureDateScript, &date)); err != nil {
		f.logger.Debug("disclosure date extraction failed", zap.Error(err))
		return ""
	}
	return date
}

func (f *Fetcher) sessionSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

func (f *Fetcher) acquire(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	select {
	case f.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return scrape.Transient("browser slot wait", ctx.Err())
	}
}

func (f *Fetcher) release() {
	if f.limiter == nil {
		return
	}
	select {
	case <-f.limiter:
	default:
	}
}
