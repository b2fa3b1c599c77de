package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crholidays/voucher-standardizer/internal/common"
)

const namespace = "voucher"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	StageRuns    *prometheus.CounterVec
	StageLatency *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "stage_runs_total", Help: "Pipeline stage runs by outcome."},
			[]string{"stage", "outcome"},
		),
		StageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "stage_duration_seconds",
				Help:    "Pipeline stage duration seconds.",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 45, 90},
			},
			[]string{"stage"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	m.registry.MustRegister(m.StageRuns, m.StageLatency, m.HTTPRequests, m.HTTPLatency)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records one pipeline stage run.
func (m *Metrics) ObserveStage(stage string, err error, dur time.Duration) {
	m.StageRuns.WithLabelValues(stage, Outcome(err)).Inc()
	m.StageLatency.WithLabelValues(stage).Observe(dur.Seconds())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// Outcome maps a stage error onto a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrExtraction):
		return "no_text"
	case errors.Is(err, common.ErrMissingConfig), errors.Is(err, common.ErrMissingTemplate):
		return "config"
	case errors.Is(err, common.ErrModelCall):
		return "model_call"
	case errors.Is(err, common.ErrMalformedOutput):
		return "malformed"
	case errors.Is(err, common.ErrRendering):
		return "rendering"
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrStageOrder):
		return "input"
	default:
		return "error"
	}
}
