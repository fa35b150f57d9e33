package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module registers the metrics collectors.
var Module = fx.Provide(New)

type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	lifecycleOps    *prometheus.CounterVec
	portConflicts   prometheus.Counter
	reconcilerDrift prometheus.Gauge
	reconcilerRuns  prometheus.Counter
}

func New() (*Metrics, error) {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiberplant_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiberplant_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lifecycleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiberplant_lifecycle_operations_total",
			Help: "Lifecycle orchestrator operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		portConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiberplant_port_allocation_conflicts_total",
			Help: "Onboarding attempts rejected because the requested port was taken.",
		}),
		reconcilerDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fiberplant_port_reconciler_drift_splitters",
			Help: "Splitters whose stored used_ports diverged from the recomputed value at the last reconcile.",
		}),
		reconcilerRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiberplant_port_reconciler_runs_total",
			Help: "Completed reconciler sweeps.",
		}),
	}

	collectors := []prometheus.Collector{
		m.httpRequests,
		m.httpDuration,
		m.lifecycleOps,
		m.portConflicts,
		m.reconcilerDrift,
		m.reconcilerRuns,
	}
	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) RecordLifecycleOp(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.lifecycleOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordPortConflict() {
	if m == nil {
		return
	}
	m.portConflicts.Inc()
}

func (m *Metrics) RecordReconcile(driftedSplitters int) {
	if m == nil {
		return
	}
	m.reconcilerDrift.Set(float64(driftedSplitters))
	m.reconcilerRuns.Inc()
}

// GinMiddleware records request counts and latencies per route template.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
