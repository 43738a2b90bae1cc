// Package disclosure implements the upload-calendar arithmetic for the
// association's quarterly disclosures: quarter-end data (Mar/Jun/Sep) goes up
// on the last weekday of the month two months later (May/Aug/Nov).
package disclosure

import (
	"fmt"
	"time"
)

// LastWeekday returns the last Monday-Friday date of the given month.
func LastWeekday(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Period formats a disclosure period the way the portal prints it,
// e.g. "2024년9월말".
func Period(year int, month time.Month) string {
	return fmt.Sprintf("%d년%d월말", year, int(month))
}

// Expected returns the latest disclosure period that should be on the portal
// as of the given date, plus a human-readable reason for the run log.
func Expected(today time.Time) (string, string) {
	year := today.Year()
	day := time.Date(year, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	lwMay := LastWeekday(year, time.May)
	lwAug := LastWeekday(year, time.August)
	lwNov := LastWeekday(year, time.November)

	switch {
	case !day.Before(lwNov):
		return Period(year, time.September), fmt.Sprintf(
			"%d-%02d-%02d 기준, %d년 11월 마지막 평일(%s) 이후이므로 %d년 9월말 데이터 예상",
			year, today.Month(), today.Day(), year, lwNov.Format("2006-01-02"), year)
	case !day.Before(lwAug):
		return Period(year, time.June), fmt.Sprintf(
			"%d-%02d-%02d 기준, %d년 8월 마지막 평일(%s) 이후이므로 %d년 6월말 데이터 예상",
			year, today.Month(), today.Day(), year, lwAug.Format("2006-01-02"), year)
	case !day.Before(lwMay):
		return Period(year, time.March), fmt.Sprintf(
			"%d-%02d-%02d 기준, %d년 5월 마지막 평일(%s) 이후이므로 %d년 3월말 데이터 예상",
			year, today.Month(), today.Day(), year, lwMay.Format("2006-01-02"), year)
	default:
		return Period(year-1, time.September), fmt.Sprintf(
			"%d-%02d-%02d 기준, %d년 5월 마지막 평일(%s) 이전이므로 %d년 9월말 데이터 예상",
			year, today.Month(), today.Day(), year, lwMay.Format("2006-01-02"), year-1)
	}
}

// Check is the outcome of comparing a scraped disclosure date against the
// expected period.
type Check string

// Check values as they appear in the run log and email body.
const (
	CheckMatch    Check = "일치"
	CheckMismatch Check = "불일치"
	CheckUnknown  Check = "추출실패"
)

// Verify compares the scraped disclosure date with the expected period.
func Verify(scraped, expected string) Check {
	switch scraped {
	case "":
		return CheckUnknown
	case expected:
		return CheckMatch
	default:
		return CheckMismatch
	}
}

// Label renders the check with its usual marker for HTML/log output.
func (c Check) Label(expected string) string {
	switch c {
	case CheckMatch:
		return "✅ 일치"
	case CheckUnknown:
		return "⚠️ 추출실패"
	default:
		return fmt.Sprintf("❌ 불일치 (예상: %s)", expected)
	}
}
