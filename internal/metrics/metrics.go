package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks API request latency by method, route, and code.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"method", "route", "code"},
	)

	// ImportRows counts CSV import rows by workflow and outcome.
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_import_rows_total",
			Help: "CSV import rows processed, by workflow and outcome",
		},
		[]string{"workflow", "outcome"}, // imported or skipped
	)

	// CouponRedemptions counts redemption attempts by result.
	CouponRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_coupon_redemptions_total",
			Help: "Coupon redemption attempts, by result",
		},
		[]string{"result"}, // redeemed, expired, depleted, inactive, error
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route, code string, seconds float64) {
	RequestDuration.WithLabelValues(method, route, code).Observe(seconds)
}

// RecordImportRows records import outcomes for one request.
func RecordImportRows(workflow string, imported, skipped int) {
	ImportRows.WithLabelValues(workflow, "imported").Add(float64(imported))
	ImportRows.WithLabelValues(workflow, "skipped").Add(float64(skipped))
}

// RecordRedemption records one redemption attempt.
func RecordRedemption(result string) {
	CouponRedemptions.WithLabelValues(result).Inc()
}
