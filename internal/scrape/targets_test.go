package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTargetsRoster(t *testing.T) {
	t.Parallel()

	targets := Targets()
	require.Len(t, targets, 80)

	ids := make(map[string]struct{}, len(targets))
	names := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		require.NotEmpty(t, target.Name)
		require.Equal(t, BaseURL, target.URL)
		ids[target.ID] = struct{}{}
		names[target.Name] = struct{}{}
	}
	require.Len(t, ids, len(targets), "ids must be unique")
	require.Len(t, names, len(targets), "bank names must be unique")

	require.Equal(t, "sb-001", targets[0].ID)
	require.Equal(t, "다올", targets[0].Name)
}

func TestFetchResultRowsPrefixesCategory(t *testing.T) {
	t.Parallel()

	res := FetchResult{
		Status: StatusSuccess,
		Tables: []CategoryTable{
			{Category: "영업개황", Rows: []Row{{Field: "총자산", Value: "1,000"}}},
			{Category: "재무현황", Rows: []Row{{Field: "총자산", Value: "2,000"}}},
		},
	}

	rows := res.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, "영업개황/총자산", rows[0].Field)
	require.Equal(t, "재무현황/총자산", rows[1].Field)
	require.Equal(t, "1,000", rows[0].Value)
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	s := RunSummary{TotalTargets: 79, SuccessCount: 75}
	require.InDelta(t, 94.9, s.SuccessRate(), 0.05)
	require.Zero(t, RunSummary{}.SuccessRate())
}
