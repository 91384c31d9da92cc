package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the authorization flow.
type Metrics struct {
	AuthorizeRequests *prometheus.CounterVec
	GrantsIssued      *prometheus.CounterVec
	LoginFailures     prometheus.Counter
	LoginSuccesses    prometheus.Counter
	RequestDuration   prometheus.Histogram
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		AuthorizeRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_authorize_requests_total",
			Help: "Authorize endpoint requests by outcome",
		}, []string{"outcome"}),
		GrantsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_grants_issued_total",
			Help: "Grants issued by response type",
		}, []string{"response_type"}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signet_login_failures_total",
			Help: "Interactive login attempts that failed credential checks",
		}),
		LoginSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signet_login_successes_total",
			Help: "Interactive login attempts that succeeded",
		}),
		RequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signet_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
