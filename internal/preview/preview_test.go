package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/properties"
)

func TestShouldIgnoreEvent(t *testing.T) {
	for _, p := range []string{"/c/.hidden.md", "/c/#page.md#", "/c/page.md.swp", "/c/page.md~", "/c/~$structure.xlsx"} {
		assert.True(t, shouldIgnoreEvent(p), p)
	}
	assert.False(t, shouldIgnoreEvent("/c/01_home/010101 - home.md"))
	assert.False(t, shouldIgnoreEvent("/c/structure.xlsx"))
}

func TestRebuilder_CoalescesBurst(t *testing.T) {
	var builds atomic.Int32
	r := NewRebuilder(20*time.Millisecond, func(context.Context) { builds.Add(1) })
	go r.Run(t.Context())

	for range 5 {
		r.Request()
		time.Sleep(2 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), builds.Load())
}

func TestRebuilder_FollowUpAfterRunningBuild(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})
	r := NewRebuilder(5*time.Millisecond, func(context.Context) {
		if builds.Add(1) == 1 {
			<-release
		}
	})
	go r.Run(t.Context())

	r.Request()
	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, time.Millisecond)
	r.Request()
	r.Request()
	close(release)

	require.Eventually(t, func() bool { return builds.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), builds.Load())
}

func TestStatus_Record(t *testing.T) {
	var s Status
	assert.False(t, s.Snapshot().Healthy())

	s.Record(&build.Result{BuildID: "b1", Status: build.StatusWarning, Pages: 3, Version: 7}, nil)
	snap := s.Snapshot()
	assert.True(t, snap.Healthy())
	assert.True(t, snap.GoodBuild)
	assert.Equal(t, 3, snap.Pages)

	s.Record(&build.Result{BuildID: "b2", Status: build.StatusFailed}, fmt.Errorf("boom"))
	snap = s.Snapshot()
	assert.False(t, snap.Healthy())
	assert.True(t, snap.GoodBuild, "an earlier good build is remembered")
	assert.Equal(t, 2, snap.Builds)
	assert.Equal(t, "boom", snap.Error)

	s.Record(nil, fmt.Errorf("no config"))
	assert.Equal(t, string(build.StatusFailed), s.Snapshot().Outcome)
}

func siteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>plain</p>"), 0o600))
	packed, err := build.Compress([]byte("<p>packed</p>"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"+build.BrotliSuffix), packed, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.css"), []byte("body{}"), 0o600))
	return dir
}

func TestHandler_ServesBrotliWhenAccepted(t *testing.T) {
	h := NewHandler(siteDir(t), nil, &Status{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	req = httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))

	req = httptest.NewRequest(http.MethodGet, "/plain.css", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestAcceptsBrotli(t *testing.T) {
	tests := map[string]bool{
		"":             false,
		"gzip":         false,
		"br":           true,
		"gzip, br;q=1": true,
		"br;q=0, gzip": false,
		"deflate,br":   true,
		"brotli-ish":   false,
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", header)
		assert.Equal(t, want, acceptsBrotli(req), header)
	}
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncBuildOutcome(metrics.OutcomeSuccess)
	status := &Status{}
	h := NewHandler(t.TempDir(), reg, status)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	status.Record(&build.Result{BuildID: "b1", Status: build.StatusSuccess, Pages: 2}, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "b1", snap.BuildID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sitebuilder_")
}

func TestWatcher_ReportsChangesAndSkipsIgnored(t *testing.T) {
	dir := t.TempDir()
	props := filepath.Join(dir, "properties.yaml")
	w, err := NewWatcher([]string{dir}, props)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	changes := make(chan string, 16)
	go func() { _ = w.Run(t.Context(), func(p string) { changes <- p }) }()

	require.NoError(t, os.WriteFile(props, []byte("version: 2\n"), 0o600))
	page := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(page, []byte("AAAAA\n"), 0o600))

	select {
	case got := <-changes:
		assert.Equal(t, page, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresPersistedProperties(t *testing.T) {
	cfg, err := config.Default(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.EnsurePaths())

	w, err := NewWatcher([]string{cfg.Paths.Content}, buildOutputs(cfg)...)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	changes := make(chan string, 16)
	go func() { _ = w.Run(t.Context(), func(p string) { changes <- p }) }()

	props := properties.Defaults()
	for range 3 {
		props.Version++
		require.NoError(t, props.Save(cfg.PropertiesPath()))
	}
	page := filepath.Join(cfg.Paths.Content, "page.md")
	require.NoError(t, os.WriteFile(page, []byte("AAAAA\n"), 0o600))

	select {
	case got := <-changes:
		assert.Equal(t, page, got, "saving properties must not request a rebuild")
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestDaemon_InvalidSchedule(t *testing.T) {
	d := NewDaemon("not a schedule", func(context.Context) (*build.Result, error) { return &build.Result{}, nil }, nil)
	err := d.Run(t.Context(), false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestDaemon_BuildNow(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	status := &Status{}
	built := make(chan struct{}, 1)
	d := NewDaemon("0 0 1 1 *", func(context.Context) (*build.Result, error) {
		built <- struct{}{}
		return &build.Result{BuildID: "now", Status: build.StatusSuccess}, nil
	}, status)

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, true) }()

	select {
	case <-built:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate build did not run")
	}
	require.Eventually(t, func() bool { return status.Snapshot().BuildID == "now" }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestPreview_ServesAndRebuilds(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Default(dir)
	require.NoError(t, err)
	cfg.Preview.Debounce = "10ms"
	require.NoError(t, cfg.EnsurePaths())

	var builds atomic.Int32
	buildFn := func(context.Context) (*build.Result, error) {
		n := builds.Add(1)
		body := fmt.Sprintf("build %d", n)
		if err := os.WriteFile(filepath.Join(cfg.Paths.Output, "index.html"), []byte(body), 0o600); err != nil {
			return nil, err
		}
		props := properties.Defaults()
		props.Version = int(n)
		if err := props.Save(cfg.PropertiesPath()); err != nil {
			return nil, err
		}
		return &build.Result{BuildID: body, Status: build.StatusSuccess}, nil
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	addrs := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Preview(ctx, Options{
			Config: cfg,
			Build:  buildFn,
			Addr:   "127.0.0.1:0",
			Ready:  func(addr string) { addrs <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-addrs:
	case <-time.After(2 * time.Second):
		t.Fatal("preview did not start")
	}
	assert.Equal(t, "build 1", get(t, "http://"+addr+"/"))

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.Content, "page.md"), []byte("AAAAA\n"), 0o600))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), builds.Load(), "a build must not trigger the next one")

	cancel()
	require.NoError(t, <-done)
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url) // #nosec G107 -- test server
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
