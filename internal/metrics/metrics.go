// Package metrics exposes Prometheus collectors for checkout submissions,
// cart persistence and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/checkout"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Recorder implements checkout.Observer and matches cartstore.SaveHook through CartSaved.
type Recorder struct {
	Outcomes    *prometheus.CounterVec
	CommitMS    *prometheus.HistogramVec
	LateResults *prometheus.CounterVec
	CartSaves   *prometheus.CounterVec
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "outcomes_total",
			Help:      "Committed checkout outcomes by kind.",
		}, []string{"kind"}),
		CommitMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "commit_duration_ms",
			Help:      "Time from submission to committed outcome in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 3000, 4000, 5000},
		}, []string{"kind"}),
		LateResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "late_results_total",
			Help:      "Network results that arrived after the fallback commit.",
		}, []string{"result"}),
		CartSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "saves_total",
			Help:      "Cart persistence attempts by result.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		gatherer: registry,
	}

	registry.MustRegister(r.Outcomes, r.CommitMS, r.LateResults, r.CartSaves, r.Requests, r.LatencyMS)
	return r
}

func (r *Recorder) OutcomeCommitted(outcome domain.OrderOutcome, elapsed time.Duration) {
	kind := string(outcome.Kind)
	r.Outcomes.WithLabelValues(kind).Inc()
	r.CommitMS.WithLabelValues(kind).Observe(float64(elapsed.Milliseconds()))
}

func (r *Recorder) LateResultDiscarded(result checkout.LateResult) {
	label := "success"
	if result.Err != nil {
		label = "failure"
	}
	r.LateResults.WithLabelValues(label).Inc()
}

func (r *Recorder) CartSaved(_ string, err error) {
	label := "ok"
	if err != nil {
		label = "error"
	}
	r.CartSaves.WithLabelValues(label).Inc()
}

func (r *Recorder) ObserveRequest(handler string, status int, elapsed time.Duration) {
	r.Requests.WithLabelValues(handler, http.StatusText(status)).Inc()
	r.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
