package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/gitpkg/pkg/buildinfo"
	"github.com/matzehuels/gitpkg/pkg/observability"
)

const metricsNamespace = "gitpkg"

// metrics records orchestrator and backend events as Prometheus metrics.
type metrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	queueDepth    prometheus.Gauge
	registrySize  prometheus.Gauge
	dependencies  prometheus.Counter
	abandoned     *prometheus.CounterVec
	clones        *prometheus.CounterVec
	cloneDuration prometheus.Histogram
	scanned       prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "build_info",
		Help:        "Build information",
		ConstLabels: buildinfo.Labels(),
	}).Set(1)

	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Completed backend operations by type and outcome",
		}, []string{"op", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Backend operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "operation_in_flight",
			Help:      "1 while a backend operation is outstanding",
		}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_depth",
			Help:      "URLs waiting to be installed",
		}),

		registrySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "registry_packages",
			Help:      "Packages currently registered",
		}),

		dependencies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dependencies_discovered_total",
			Help:      "Git dependencies queued from package manifests",
		}),

		abandoned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "adds_abandoned_total",
			Help:      "Queued URLs dropped after failing to install",
		}, []string{"reason"}),

		clones: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "git",
			Name:      "clones_total",
			Help:      "Git clones by outcome",
		}, []string{"status"}),

		cloneDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "git",
			Name:      "clone_duration_seconds",
			Help:      "Git clone duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		scanned: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "git",
			Name:      "installed_packages",
			Help:      "Packages found by the last directory scan",
		}),
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (m *metrics) OnOperationStart(_ context.Context, _, _ string) {
	m.inFlight.Set(1)
}

func (m *metrics) OnOperationComplete(_ context.Context, op, _ string, d time.Duration, err error) {
	m.inFlight.Set(0)
	m.operations.WithLabelValues(op, statusLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *metrics) OnQueueDepth(_ context.Context, depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *metrics) OnRegistrySize(_ context.Context, size int) {
	m.registrySize.Set(float64(size))
}

func (m *metrics) OnDependencyDiscovered(context.Context, string, string) {
	m.dependencies.Inc()
}

func (m *metrics) OnAddAbandoned(_ context.Context, _, reason string) {
	m.abandoned.WithLabelValues(reason).Inc()
}

func (m *metrics) OnClone(_ context.Context, _ string, d time.Duration, err error) {
	m.clones.WithLabelValues(statusLabel(err)).Inc()
	m.cloneDuration.Observe(d.Seconds())
}

func (m *metrics) OnScan(_ context.Context, packages int, _ time.Duration, err error) {
	if err == nil {
		m.scanned.Set(float64(packages))
	}
}

var (
	_ observability.OrchestratorHooks = (*metrics)(nil)
	_ observability.BackendHooks      = (*metrics)(nil)
)

// =============================================================================
// Server
// =============================================================================

// metricsRouter serves /metrics from g and a /healthz probe.
func metricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// startMetrics installs metrics hooks and serves them on addr until the
// returned stop function is called.
func startMetrics(addr string, logger *log.Logger) (stop func(), err error) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           metricsRouter(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "err", err)
		}
	}()

	observability.SetOrchestratorHooks(m)
	observability.SetBackendHooks(m)
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
