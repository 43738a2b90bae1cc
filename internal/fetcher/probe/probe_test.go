package probe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsbdata/disclosure-crawler/internal/fetcher/probe"
)

func portalPage() string {
	return "<html><body>" + strings.Repeat("<p>저축은행 통일경영공시</p>", 30) + "</body></html>"
}

func TestCheckPassesOnHealthyPortal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(portalPage()))
	}))
	defer srv.Close()

	err := probe.New(probe.Config{}).Check(context.Background(), srv.URL)
	require.NoError(t, err)
}

func TestCheckFailsOnServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := probe.New(probe.Config{}).Check(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestCheckFailsOnTinyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	err := probe.New(probe.Config{}).Check(context.Background(), srv.URL)
	require.ErrorContains(t, err, "implausibly small")
}

func TestCheckHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := probe.New(probe.Config{}).Check(ctx, "http://127.0.0.1:1")
	require.ErrorContains(t, err, "canceled")
}

func TestCheckFailsOnUnreachableHost(t *testing.T) {
	t.Parallel()

	err := probe.New(probe.Config{}).Check(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
}
