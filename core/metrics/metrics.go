// Package metrics holds the bridge's Prometheus collectors. A dedicated
// registry keeps test processes from tripping duplicate registration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	backendInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirrorbridge_backend_invocations_total",
			Help: "Backend invocations by backend kind and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mirrorbridge_upstream_rpc_latency_seconds",
			Help:    "Wall-clock latency of upstream JSON-RPC calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	proxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirrorbridge_proxy_requests_total",
			Help: "Status proxy requests by route and HTTP status.",
		},
		[]string{"route", "status"},
	)
)

func init() {
	registry.MustRegister(backendInvocations, upstreamLatency, proxyRequests)
}

func ObserveInvocation(backend string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	backendInvocations.WithLabelValues(backend, outcome).Inc()
}

func ObserveUpstream(method string, seconds float64) {
	upstreamLatency.WithLabelValues(method).Observe(seconds)
}

func ObserveProxyRequest(route, status string) {
	proxyRequests.WithLabelValues(route, status).Inc()
}

// Handler serves the bridge registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
