package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	embedTotal    *prometheus.CounterVec
	embedDuration *prometheus.HistogramVec
	embedInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	embedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papl",
			Subsystem: "worker",
			Name:      "embed_total",
			Help:      "Total embedding backfill requests by status.",
		},
		[]string{"service", "status"},
	)
	embedDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papl",
			Subsystem: "worker",
			Name:      "embed_duration_seconds",
			Help:      "Embedding backfill duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	embedInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "papl",
			Subsystem: "worker",
			Name:      "embed_in_flight",
			Help:      "Number of in-flight embedding backfill requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(embedTotal, embedDuration, embedInFlight)

	return &WorkerMetrics{
		registry:      registry,
		embedTotal:    embedTotal,
		embedDuration: embedDuration,
		embedInFlight: embedInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEmbed() {
	m.embedInFlight.Inc()
}

func (m *WorkerMetrics) FinishEmbed(service string, duration time.Duration, err error) {
	m.embedInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.embedTotal.WithLabelValues(service, status).Inc()
	m.embedDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
