// Package metrics exposes Prometheus metrics and a health endpoint for the
// update cycle.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Cycle outcomes used as the status label of CyclesTotal.
const (
	CycleOK      = "ok"
	CyclePartial = "partial"
	CycleFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal   *prometheus.CounterVec // labels: status
	CycleDuration prometheus.Histogram
	MetalResults  *prometheus.CounterVec // labels: metal, status
	BuyScore      *prometheus.GaugeVec   // labels: metal
	LastSuccess   prometheus.Gauge
}

// NewMetrics registers all metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_cycles_total",
			Help: "Update cycles by outcome",
		}, []string{"status"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_cycle_duration_seconds",
			Help:    "Time to load history, compute and publish one report",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		MetalResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_metal_results_total",
			Help: "Per-metal results by status",
		}, []string{"metal", "status"}),
		BuyScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tracker_buy_score",
			Help: "Latest published buy score (0-100)",
		}, []string{"metal"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_last_success_timestamp_seconds",
			Help: "Unix time of the last cycle that published a report",
		}),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.MetalResults,
		m.BuyScore,
		m.LastSuccess,
	)
	return m
}

// ObserveCycle records one finished cycle. r is nil when the cycle failed
// before a report was assembled.
func (m *Metrics) ObserveCycle(r *model.Report, took time.Duration, now time.Time) {
	m.CycleDuration.Observe(took.Seconds())
	if r == nil {
		m.CyclesTotal.WithLabelValues(CycleFailed).Inc()
		return
	}

	status := CycleOK
	if len(r.Failed()) > 0 {
		status = CyclePartial
	}
	m.CyclesTotal.WithLabelValues(status).Inc()
	m.LastSuccess.Set(float64(now.Unix()))

	for _, metal := range r.Metals {
		res := r.Results[metal]
		m.MetalResults.WithLabelValues(string(metal), string(res.Status)).Inc()
		if res.OK() {
			m.BuyScore.WithLabelValues(string(metal)).Set(float64(res.Record.BuyScore))
		} else {
			m.BuyScore.DeleteLabelValues(string(metal))
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HealthStatus tracks the outcome of the most recent cycle.
type HealthStatus struct {
	mu          sync.RWMutex
	StartedAt   time.Time
	LastCycleAt time.Time
	LastStatus  string
	LastError   string
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// SetCycle records the most recent cycle.
func (h *HealthStatus) SetCycle(at time.Time, status string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastCycleAt = at
	h.LastStatus = status
	h.LastError = ""
	if err != nil {
		h.LastError = err.Error()
	}
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overall := "healthy"
	code := http.StatusOK
	switch h.LastStatus {
	case CycleFailed:
		overall, code = "unhealthy", http.StatusServiceUnavailable
	case CyclePartial:
		overall = "degraded"
	case "":
		overall = "starting"
	}

	lastCycle := ""
	if !h.LastCycleAt.IsZero() {
		lastCycle = h.LastCycleAt.Format(time.RFC3339)
	}
	status := struct {
		Status      string `json:"status"`
		Uptime      string `json:"uptime"`
		LastCycleAt string `json:"last_cycle_at"`
		LastStatus  string `json:"last_cycle_status"`
		LastError   string `json:"last_error,omitempty"`
	}{
		Status:      overall,
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		LastCycleAt: lastCycle,
		LastStatus:  h.LastStatus,
		LastError:   h.LastError,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server. Extra handlers are mounted
// by path next to the defaults.
func NewServer(addr string, m *Metrics, health *HealthStatus, extra map[string]http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/healthz", health)
	for path, h := range extra {
		mux.Handle(path, h)
	}
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] metrics server shutdown: %v", err)
	}
}
