package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal       *prometheus.CounterVec
	searchNoMatch     *prometheus.CounterVec
	searchResults     *prometheus.HistogramVec
	searchDuration    *prometheus.HistogramVec
	contextSize       *prometheus.HistogramVec
	answersTotal      *prometheus.CounterVec
	corpusDocuments   prometheus.Gauge
	corpusPendingDocs prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "papl",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papl",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total successful searches by classified intent and served mode.",
		},
		[]string{"service", "endpoint", "intent", "mode"},
	)
	searchNoMatch := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papl",
			Subsystem: "search",
			Name:      "no_match_total",
			Help:      "Total searches that returned an empty result set.",
		},
		[]string{"service", "endpoint"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papl",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of result counts per successful search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papl",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	contextSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "papl",
			Subsystem: "context",
			Name:      "size_chars",
			Help:      "Distribution of assembled context sizes in characters.",
			Buckets:   []float64{500, 1000, 2000, 4000, 8000, 16000},
		},
		[]string{"service", "endpoint"},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "papl",
			Subsystem: "answer",
			Name:      "generated_total",
			Help:      "Total generated answers by outcome.",
		},
		[]string{"service", "outcome"},
	)
	corpusDocuments := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "papl",
			Subsystem: "corpus",
			Name:      "documents",
			Help:      "Documents in the serving snapshot after the last reload.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	corpusPendingDocs := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "papl",
			Subsystem: "corpus",
			Name:      "pending_embeddings",
			Help:      "Documents awaiting embedding backfill after the last reload.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchNoMatch,
		searchResults,
		searchDuration,
		contextSize,
		answersTotal,
		corpusDocuments,
		corpusPendingDocs,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		searchTotal:       searchTotal,
		searchNoMatch:     searchNoMatch,
		searchResults:     searchResults,
		searchDuration:    searchDuration,
		contextSize:       contextSize,
		answersTotal:      answersTotal,
		corpusDocuments:   corpusDocuments,
		corpusPendingDocs: corpusPendingDocs,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/conversations/"):
		return "/v1/conversations/{conversation_id}/messages"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, endpoint, intent, mode string, resultCount int, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	if mode == "" {
		mode = "unknown"
	}
	m.searchTotal.WithLabelValues(service, endpoint, intent, mode).Inc()
	m.searchResults.WithLabelValues(service, endpoint).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if resultCount == 0 {
		m.searchNoMatch.WithLabelValues(service, endpoint).Inc()
	}
}

func (m *HTTPServerMetrics) RecordContextSize(service, endpoint string, size int) {
	m.contextSize.WithLabelValues(service, endpoint).Observe(float64(size))
}

func (m *HTTPServerMetrics) RecordAnswer(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.answersTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordCorpusReload(documents, pending int) {
	m.corpusDocuments.Set(float64(documents))
	m.corpusPendingDocs.Set(float64(pending))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
