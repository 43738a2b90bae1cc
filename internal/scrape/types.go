// Package scrape defines core types shared across subsystems.
package scrape

import (
	"time"
)

// Status is the terminal outcome of scraping one target.
type Status string

// Status values recorded in the run log. StatusErr only classifies
// individual attempts (a bank missing from the portal list, a failed tab
// click); terminal results use the other four.
const (
	StatusSuccess   Status = "success"
	StatusTimeout   Status = "timeout"
	StatusParseErr  Status = "parse_error"
	StatusExhausted Status = "exhausted_retries"
	StatusErr       Status = "error"
)

// Target identifies one bank's disclosure page. Targets are enumerated once
// at startup and never mutated.
type Target struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Row is one field/value pair extracted from a disclosure table.
type Row struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CategoryTable holds the rows extracted from one category tab.
type CategoryTable struct {
	Category string `json:"category"`
	Rows     []Row  `json:"rows"`
}

// CategoryHTML is the rendered HTML of one category tab.
type CategoryHTML struct {
	Category string
	HTML     string
}

// Page is what the fetcher returns for one successful page load.
type Page struct {
	DisclosureDate string
	Categories     []CategoryHTML
}

// FetchResult is the terminal record for one target in one run. Exactly one
// exists per target per run.
type FetchResult struct {
	Target         Target          `json:"target"`
	Status         Status          `json:"status"`
	Tables         []CategoryTable `json:"tables,omitempty"`
	DisclosureDate string          `json:"disclosure_date,omitempty"`
	Attempts       int             `json:"attempts"`
	Duration       time.Duration   `json:"duration"`
	ErrorDetail    string          `json:"error_detail,omitempty"`
}

// Rows flattens all category tables in document order, with field names
// prefixed by category so they stay unique across tabs.
func (r FetchResult) Rows() []Row {
	var out []Row
	for _, tbl := range r.Tables {
		for _, row := range tbl.Rows {
			out = append(out, Row{
				Field: tbl.Category + "/" + row.Field,
				Value: row.Value,
			})
		}
	}
	return out
}

// Succeeded reports whether the target yielded usable data.
func (r FetchResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// RunSummary is built once by the aggregator after every target has a
// terminal FetchResult. Immutable after construction.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	RunDate        time.Time     `json:"run_date"`
	ExpectedPeriod string        `json:"expected_period"`
	PeriodReason   string        `json:"period_reason"`
	TotalTargets   int           `json:"total_targets"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	Elapsed        time.Duration `json:"elapsed"`
	Results        []FetchResult `json:"results"`
}

// SuccessRate returns the success percentage, e.g. 94.9 for 75/79.
func (s RunSummary) SuccessRate() float64 {
	if s.TotalTargets == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalTargets) * 100
}
