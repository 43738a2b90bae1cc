// Package report merges per-target results into run artifacts: the wide
// summary table, the narrow run log, and the packaged archive.
package report

import (
	"time"

	"github.com/fsbdata/disclosure-crawler/internal/disclosure"
	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

// LogEntry is one run-log line, one per target.
type LogEntry struct {
	Bank           string
	Status         scrape.Status
	Attempts       int
	Duration       time.Duration
	DisclosureDate string
	DateCheck      string
	Detail         string
}

// WideTable is the aggregate spreadsheet body: one row per successful bank,
// one column per financial field. Every row has len(Columns) cells.
type WideTable struct {
	Columns []string
	Rows    [][]string
}

// Aggregated is everything downstream consumers need for one run.
type Aggregated struct {
	Summary scrape.RunSummary
	Wide    WideTable
	Log     []LogEntry
}

// Aggregate merges the pool's results. Results must already be in enumerator
// order; the invariant success+failure == total holds by construction since
// every result carries exactly one terminal status.
func Aggregate(runID string, runDate time.Time, elapsed time.Duration, results []scrape.FetchResult, expectedPeriod, periodReason string) Aggregated {
	summary := scrape.RunSummary{
		RunID:          runID,
		RunDate:        runDate,
		ExpectedPeriod: expectedPeriod,
		PeriodReason:   periodReason,
		TotalTargets:   len(results),
		Elapsed:        elapsed,
		Results:        results,
	}
	for _, res := range results {
		if res.Succeeded() {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}
	}

	return Aggregated{
		Summary: summary,
		Wide:    buildWideTable(results),
		Log:     buildLog(results, expectedPeriod),
	}
}

func buildWideTable(results []scrape.FetchResult) WideTable {
	columns := []string{"은행명", "공시날짜"}
	seen := map[string]int{"은행명": 0, "공시날짜": 1}

	type bankRow struct {
		name   string
		date   string
		values map[string]string
	}
	var banks []bankRow

	for _, res := range results {
		if !res.Succeeded() {
			continue
		}
		values := make(map[string]string)
		for _, row := range res.Rows() {
			if _, ok := seen[row.Field]; !ok {
				seen[row.Field] = len(columns)
				columns = append(columns, row.Field)
			}
			if _, ok := values[row.Field]; !ok {
				values[row.Field] = row.Value
			}
		}
		banks = append(banks, bankRow{
			name:   res.Target.Name,
			date:   res.DisclosureDate,
			values: values,
		})
	}

	rows := make([][]string, 0, len(banks))
	for _, b := range banks {
		row := make([]string, len(columns))
		row[0] = b.name
		row[1] = b.date
		for field, value := range b.values {
			row[seen[field]] = value
		}
		rows = append(rows, row)
	}

	return WideTable{Columns: columns, Rows: rows}
}

func buildLog(results []scrape.FetchResult, expectedPeriod string) []LogEntry {
	entries := make([]LogEntry, 0, len(results))
	for _, res := range results {
		check := ""
		if res.Succeeded() {
			check = disclosure.Verify(res.DisclosureDate, expectedPeriod).Label(expectedPeriod)
		}
		entries = append(entries, LogEntry{
			Bank:           res.Target.Name,
			Status:         res.Status,
			Attempts:       res.Attempts,
			Duration:       res.Duration,
			DisclosureDate: res.DisclosureDate,
			DateCheck:      check,
			Detail:         res.ErrorDetail,
		})
	}
	return entries
}
