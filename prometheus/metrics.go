package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Authorization gate outcomes
	GateCheckCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_gate_checks_total",
			Help: "Total number of store access gate checks by outcome",
		},
		[]string{"outcome"}, // authorized, unauthenticated, not_found, forbidden, error
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	// Media upload counter
	MediaUploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_media_uploads_total",
			Help: "Total number of media uploads by result",
		},
		[]string{"result"},
	)

	// Customer inquiry counter
	InquiryCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_inquiries_total",
			Help: "Total number of customer inquiries received",
		},
	)

	// Storefront visit counter
	VisitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_visits_total",
			Help: "Total number of tracked storefront visits",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// HTTP request duration histogram
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// Database operation duration histogram
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		GateCheckCounter,
		AuthErrorCounter,
		MediaUploadCounter,
		InquiryCounter,
		VisitCounter,
		HTTPRequestCounter,
		HTTPRequestDuration,
		DBOperationDuration,
	)
}

// RecordGateCheck increments the gate check counter for the given outcome
func RecordGateCheck(outcome string) {
	GateCheckCounter.WithLabelValues(outcome).Inc()
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordMediaUpload increments the media upload counter for the given result
func RecordMediaUpload(result string) {
	MediaUploadCounter.WithLabelValues(result).Inc()
}

// TrackDBOperation returns a function that records the duration of a database
// operation when called. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware returns an Echo middleware that records request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			endpoint := c.Path()
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			HTTPRequestCounter.WithLabelValues(endpoint, method, status).Inc()
			HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetPrometheusHandler returns the HTTP handler for the /metrics endpoint
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
