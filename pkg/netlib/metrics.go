package netlib

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlib_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlib_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netlib_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlib_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "status"},
	)
)

// PrometheusConfig holds configuration for the Prometheus metrics
// middleware.
type PrometheusConfig struct {
	// SkipTargets lists request targets to skip metrics collection for
	SkipTargets []string
}

// DefaultPrometheusConfig returns a PrometheusConfig with sensible
// defaults.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		SkipTargets: []string{"/metrics"},
	}
}

// Prometheus returns a middleware that collects Prometheus metrics.
// Labels are method and status; the raw request target is deliberately
// not a label to keep cardinality bounded.
func Prometheus() Middleware {
	return PrometheusWithConfig(DefaultPrometheusConfig())
}

// PrometheusWithConfig returns a middleware that collects Prometheus
// metrics with custom configuration.
func PrometheusWithConfig(config PrometheusConfig) Middleware {
	skipMap := make(map[string]bool, len(config.SkipTargets))
	for _, target := range config.SkipTargets {
		skipMap[target] = true
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) error {
			if skipMap[ctx.Target()] {
				return next.ServeHTTP(ctx)
			}

			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next.ServeHTTP(ctx)

			duration := time.Since(start).Seconds()
			statusCode := ctx.Status()
			if statusCode == 0 {
				statusCode = 200
			}
			status := strconv.Itoa(statusCode)
			method := ctx.Method()

			httpRequestsTotal.WithLabelValues(method, status).Inc()
			httpRequestDuration.WithLabelValues(method, status).Observe(duration)
			httpResponseSize.WithLabelValues(method, status).Observe(float64(len(ctx.ResponseBody())))

			return err
		})
	}
}
