package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
)

// Metrics holds the draw collectors and the registry that exposes them.
// It satisfies session.Recorder.
type Metrics struct {
	Registry *prometheus.Registry

	drawsStarted  *prometheus.CounterVec
	drawsIgnored  prometheus.Counter
	drawsSettled  *prometheus.CounterVec
	spinDuration  prometheus.Histogram
	feedbackFails *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// NewMetrics creates a Metrics with a private registry that also carries
// the Go runtime and process collectors.
//
// Postcondition: Returns a non-nil *Metrics with all collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		drawsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "draws",
			Name:      "started_total",
			Help:      "Draws started, by selected prize.",
		}, []string{"prize_id"}),
		drawsIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "draws",
			Name:      "ignored_total",
			Help:      "Draw triggers ignored because a spin was in progress.",
		}),
		drawsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "draws",
			Name:      "settled_total",
			Help:      "Draws settled, by winning prize.",
		}, []string{"prize_id"}),
		spinDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "luckydraw",
			Subsystem: "draws",
			Name:      "spin_duration_seconds",
			Help:      "Time from draw start to settle.",
			Buckets:   prometheus.LinearBuckets(0.5, 0.5, 12), // 0.5s to 6s
		}),
		feedbackFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "feedback",
			Name:      "failures_total",
			Help:      "Best-effort feedback calls that failed, by kind.",
		}, []string{"kind"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luckydraw",
			Subsystem: "frontend",
			Name:      "active_sessions",
			Help:      "Terminal sessions currently attached to a wheel.",
		}),
	}
	m.Registry.MustRegister(
		m.drawsStarted,
		m.drawsIgnored,
		m.drawsSettled,
		m.spinDuration,
		m.feedbackFails,
		m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// DrawStarted counts a draw that committed to p.
func (m *Metrics) DrawStarted(p prize.Prize) {
	m.drawsStarted.WithLabelValues(p.ID).Inc()
}

// DrawIgnored counts a trigger rejected by an in-progress spin.
func (m *Metrics) DrawIgnored() {
	m.drawsIgnored.Inc()
}

// DrawSettled counts a settled draw and observes its spin time.
func (m *Metrics) DrawSettled(p prize.Prize, elapsed time.Duration) {
	m.drawsSettled.WithLabelValues(p.ID).Inc()
	m.spinDuration.Observe(elapsed.Seconds())
}

// FeedbackFailed counts a failed feedback call.
func (m *Metrics) FeedbackFailed(kind string) {
	m.feedbackFails.WithLabelValues(kind).Inc()
}

// SessionOpened and SessionClosed track attached terminals.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

// SessionClosed decrements the attached terminal gauge.
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// MetricsServer serves /metrics and /healthz over HTTP. It satisfies server.Service.
type MetricsServer struct {
	addr   string
	srv    *http.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewMetricsServer creates a server exposing m on addr.
//
// Precondition: addr is a valid listen address; m and logger are non-nil.
func NewMetricsServer(addr string, m *Metrics, logger *zap.Logger) *MetricsServer {
	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet, http.MethodHead)
	return &MetricsServer{
		addr:   addr,
		srv:    &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// Start listens and serves until Stop is called.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("metrics endpoint listening", zap.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving metrics: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting up to five seconds for in-flight scrapes.
func (s *MetricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics shutdown", zap.Error(err))
	}
}

// Addr returns the bound address, or empty string before Start.
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
