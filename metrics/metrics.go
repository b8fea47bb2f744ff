// Package metrics exposes Prometheus instrumentation for document rendering
// and SWAIG function dispatch.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "callmesh_documents_rendered_total",
		Help: "SWML documents rendered",
	}, []string{"agent", "status"})
	functionCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "callmesh_swaig_calls_total",
		Help: "SWAIG function invocations",
	}, []string{"agent", "function", "status"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "callmesh_request_duration_seconds",
		Help:    "HTTP handler latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})
)

func init() {
	prometheus.MustRegister(documentsRendered, functionCalls, requestDuration)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }

// IncDocumentRendered records a document render outcome ("ok" or "error").
func IncDocumentRendered(agent, status string) {
	documentsRendered.WithLabelValues(agent, status).Inc()
}

// IncFunctionCall records a SWAIG dispatch outcome ("ok" or an error code).
func IncFunctionCall(agent, function, status string) {
	functionCalls.WithLabelValues(agent, function, status).Inc()
}

// ObserveRequest records handler latency in seconds.
func ObserveRequest(handler string, seconds float64) {
	requestDuration.WithLabelValues(handler).Observe(seconds)
}
