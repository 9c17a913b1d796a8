package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for checkout outcomes and HTTP traffic
var (
	CheckoutIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_intents_total",
			Help: "Payment intents requested, by gateway mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	CheckoutVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_verifications_total",
			Help: "Payment verifications, by gateway mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	OrphanedPaymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_orphaned_payments_total",
			Help: "Verified live payments whose order could not be stored and need manual reconciliation",
		},
	)

	ProductCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_cache_lookups_total",
			Help: "Catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Register registers all collectors with reg
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CheckoutIntentsTotal,
		CheckoutVerificationsTotal,
		OrphanedPaymentsTotal,
		ProductCacheLookupsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Mode labels a checkout metric with the gateway mode
func Mode(mock bool) string {
	if mock {
		return "mock"
	}
	return "live"
}
