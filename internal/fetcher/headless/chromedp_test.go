package headless

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

func TestNewLimiterValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{MaxParallel: -1}, nil); err == nil {
		t.Fatal("expected error for negative max parallel")
	}

	fetcher, err := New(Config{MaxParallel: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()
	if cap(fetcher.limiter) != 2 {
		t.Fatalf("expected limiter capacity 2, got %d", cap(fetcher.limiter))
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	fetcher, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()

	if fetcher.cfg.PageLoadTimeout != 30*time.Second {
		t.Fatalf("expected default page load timeout, got %v", fetcher.cfg.PageLoadTimeout)
	}
	if fetcher.cfg.WaitTimeout != 10*time.Second {
		t.Fatalf("expected default wait timeout, got %v", fetcher.cfg.WaitTimeout)
	}
	if fetcher.cfg.UserAgent == "" {
		t.Fatal("expected a default user agent")
	}
	if len(fetcher.cfg.Categories) != len(scrape.Categories) {
		t.Fatalf("expected default categories, got %v", fetcher.cfg.Categories)
	}
	if fetcher.limiter != nil {
		t.Fatal("expected no limiter when max parallel is zero")
	}
}

func TestOpCtxGivesEachOperationAFreshDeadline(t *testing.T) {
	t.Parallel()

	fetcher := &Fetcher{cfg: Config{WaitTimeout: 100 * time.Millisecond}}
	parent := context.Background()

	first, cancelFirst := fetcher.opCtx(parent)
	defer cancelFirst()
	time.Sleep(60 * time.Millisecond)

	second, cancelSecond := fetcher.opCtx(parent)
	defer cancelSecond()

	firstDeadline, ok := first.Deadline()
	if !ok {
		t.Fatal("expected a deadline on the first operation context")
	}
	secondDeadline, ok := second.Deadline()
	if !ok {
		t.Fatal("expected a deadline on the second operation context")
	}
	if !secondDeadline.After(firstDeadline) {
		t.Fatalf("second operation must not inherit a spent deadline: first=%v second=%v",
			firstDeadline, secondDeadline)
	}
	if remaining := time.Until(secondDeadline); remaining < 80*time.Millisecond {
		t.Fatalf("second operation should get a full budget, got %v left", remaining)
	}
}

func TestSelectBankScriptQuotesName(t *testing.T) {
	t.Parallel()

	script := selectBankScript(`우리`)
	if !strings.Contains(script, `"우리"`) {
		t.Fatalf("bank name not quoted into script:\n%s", script)
	}

	// A malicious or odd name must not break out of the string literal.
	script = selectBankScript(`a" ; alert(1); "`)
	if !strings.Contains(script, `\"`) {
		t.Fatalf("expected escaped quotes in script:\n%s", script)
	}
}

func TestSelectCategoryScriptContainsCategory(t *testing.T) {
	t.Parallel()

	for _, category := range scrape.Categories {
		script := selectCategoryScript(category)
		if !strings.Contains(script, category) {
			t.Fatalf("category %q missing from script", category)
		}
	}
}
