package apiclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saborconquista",
		Name:      "backend_requests_total",
		Help:      "Requests sent to the restaurant backend, by method and status class.",
	}, []string{"method", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saborconquista",
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of requests to the restaurant backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	sessionExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "saborconquista",
		Name:      "session_expirations_total",
		Help:      "401 responses that forced a logout.",
	})
)

func statusClass(code int) string {
	if code == 0 {
		return "no_response"
	}
	return strconv.Itoa(code/100) + "xx"
}
