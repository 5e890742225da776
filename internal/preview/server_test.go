package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/report"
	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Build.Output = filepath.Join(root, "public")
	cfg.Preview.Addr = "127.0.0.1:0"
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o750))
	require.NoError(t, os.MkdirAll(cfg.Build.Output, 0o750))
	return cfg
}

func noRebuild(context.Context) result.Status { return result.Done() }

func TestHandler_ServesOutputTree(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.Output, "index.html"), []byte("<p>home</p>"), 0o600))

	s := New(cfg, noRebuild)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_MetricsOnlyWhenEnabled(t *testing.T) {
	cfg := testConfig(t)
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(cfg, noRebuild, WithMetricsHandler(metricsHandler))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	cfg.Preview.Metrics = true
	ts2 := httptest.NewServer(s.Handler())
	defer ts2.Close()

	resp2, err := http.Get(ts2.URL + "/metrics")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestRun_RebuildsOnContentChange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview.Watch = true

	var builds atomic.Int32
	rebuild := func(context.Context) result.Status {
		builds.Add(1)
		return result.Done()
	}

	sink := &report.BufferSink{}
	s := New(cfg, rebuild,
		WithDebounce(20*time.Millisecond),
		WithRenderer(report.New(report.WithSink(sink))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Initial build.
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Content.Dir, "new.md"), []byte("x"), 0o600))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NotEmpty(t, sink.Infos())
}

func TestRun_PeriodicRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview.Watch = false
	cfg.Preview.RebuildInterval = "50ms"

	var builds atomic.Int32
	rebuild := func(context.Context) result.Status {
		builds.Add(1)
		return result.Done()
	}

	s := New(cfg, rebuild, WithRenderer(report.New(report.WithSink(&report.BufferSink{}))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return builds.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
