package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"parse error", &ParseError{Category: "기타", Err: errors.New("no table")}, StatusParseErr},
		{"wrapped parse error", fmt.Errorf("attempt: %w", &ParseError{Err: errors.New("x")}), StatusParseErr},
		{"deadline", Transient("navigate", context.DeadlineExceeded), StatusTimeout},
		{"bank not on portal", Transient("select bank", errors.New(`bank "우리" not found on portal page`)), StatusErr},
		{"generic transient", Transient("wait table", errors.New("conn reset")), StatusErr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	require.False(t, Retryable(nil))
	require.False(t, Retryable(context.Canceled))
	require.False(t, Retryable(Transient("navigate", context.Canceled)))
	require.True(t, Retryable(context.DeadlineExceeded))
	require.True(t, Retryable(&ParseError{Err: errors.New("no rows")}))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	err := Transient("navigate", errors.New("timeout"))
	require.Equal(t, "navigate: timeout", err.Error())

	pe := &ParseError{Category: "재무현황", Err: errors.New("no table")}
	require.Equal(t, "parse 재무현황: no table", pe.Error())
	require.Equal(t, "parse: no table", (&ParseError{Err: errors.New("no table")}).Error())
}
