package disclosure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestLastWeekday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2024, time.May, "2024-05-31"},      // Friday
		{2024, time.August, "2024-08-30"},   // Aug 31 is a Saturday
		{2024, time.November, "2024-11-29"}, // Nov 30 is a Saturday
		{2025, time.May, "2025-05-30"},      // May 31 is a Saturday
		{2025, time.August, "2025-08-29"},   // Aug 31 is a Sunday
		{2025, time.November, "2025-11-28"}, // Nov 30 is a Sunday
	}
	for _, tc := range tests {
		got := LastWeekday(tc.year, tc.month)
		require.Equal(t, tc.want, got.Format("2006-01-02"))
		require.NotEqual(t, time.Saturday, got.Weekday())
		require.NotEqual(t, time.Sunday, got.Weekday())
	}
}

func TestPeriodFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2024년9월말", Period(2024, time.September))
	require.Equal(t, "2025년3월말", Period(2025, time.March))
}

func TestExpectedFollowsUploadCalendar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"early in the year", date(2025, time.January, 15), "2024년9월말"},
		{"day before the May upload", date(2025, time.May, 29), "2024년9월말"},
		{"May upload day", date(2025, time.May, 30), "2025년3월말"},
		{"midsummer", date(2025, time.July, 1), "2025년3월말"},
		{"after the August upload", date(2025, time.September, 1), "2025년6월말"},
		{"after the November upload", date(2025, time.December, 1), "2025년9월말"},
		{"year end", date(2024, time.December, 31), "2024년9월말"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, reason := Expected(tc.today)
			require.Equal(t, tc.want, got)
			require.NotEmpty(t, reason)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	require.Equal(t, CheckMatch, Verify("2024년9월말", "2024년9월말"))
	require.Equal(t, CheckMismatch, Verify("2024년6월말", "2024년9월말"))
	require.Equal(t, CheckUnknown, Verify("", "2024년9월말"))
}

func TestCheckLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "✅ 일치", CheckMatch.Label("2024년9월말"))
	require.Equal(t, "⚠️ 추출실패", CheckUnknown.Label("2024년9월말"))
	require.Equal(t, "❌ 불일치 (예상: 2024년9월말)", CheckMismatch.Label("2024년9월말"))
}
