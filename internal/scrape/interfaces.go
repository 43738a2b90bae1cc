package scrape

import (
	"context"
	"time"
)

// Fetcher loads one bank's disclosure page and returns the rendered HTML for
// every category tab. Implementations must release browser resources even on
// timeout or error.
type Fetcher interface {
	Fetch(ctx context.Context, target Target) (Page, error)
}

// Extractor converts one category's rendered HTML into field/value rows.
type Extractor interface {
	Extract(category, html string) ([]Row, error)
}

// Publisher pushes run-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// RunStore persists run history.
type RunStore interface {
	RecordRun(ctx context.Context, summary RunSummary) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
