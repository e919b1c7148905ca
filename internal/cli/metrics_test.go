package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/gitpkg/pkg/observability"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	ctx := context.Background()

	m.OnOperationStart(ctx, "add", "https://example.com/a.git")
	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Errorf("inFlight = %v, want 1", got)
	}
	m.OnOperationComplete(ctx, "add", "https://example.com/a.git", time.Second, nil)
	m.OnOperationComplete(ctx, "add", "https://example.com/b.git", time.Second, errors.New("boom"))
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("inFlight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("add", "success")); got != 1 {
		t.Errorf("operations{add,success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("add", "failure")); got != 1 {
		t.Errorf("operations{add,failure} = %v, want 1", got)
	}

	m.OnQueueDepth(ctx, 3)
	m.OnRegistrySize(ctx, 7)
	m.OnDependencyDiscovered(ctx, "a", "https://example.com/c.git")
	m.OnAddAbandoned(ctx, "https://example.com/b.git", "retry limit reached")
	m.OnClone(ctx, "https://example.com/a.git", time.Second, nil)
	m.OnScan(ctx, 5, time.Millisecond, nil)
	m.OnScan(ctx, 0, time.Millisecond, errors.New("unreadable"))

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"queue_depth", m.queueDepth, 3},
		{"registry_packages", m.registrySize, 7},
		{"dependencies", m.dependencies, 1},
		{"abandoned", m.abandoned.WithLabelValues("retry limit reached"), 1},
		{"clones", m.clones.WithLabelValues("success"), 1},
		{"scanned", m.scanned, 5},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.OnQueueDepth(context.Background(), 2)
	r := metricsRouter(reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"gitpkg_queue_depth 2", "gitpkg_build_info"} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /metrics missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestStartMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)

	stop, err := startMetrics("127.0.0.1:0", log.New(io.Discard))
	if err != nil {
		t.Fatalf("startMetrics() error = %v", err)
	}
	defer stop()

	if _, ok := observability.Orchestrator().(*metrics); !ok {
		t.Errorf("Orchestrator() hooks = %T, want *metrics", observability.Orchestrator())
	}
	if _, ok := observability.Backend().(*metrics); !ok {
		t.Errorf("Backend() hooks = %T, want *metrics", observability.Backend())
	}
}

func TestStartMetricsBadAddr(t *testing.T) {
	if _, err := startMetrics("not-an-address", log.New(io.Discard)); err == nil {
		t.Error("startMetrics() with bad address error = nil, want error")
	}
}
