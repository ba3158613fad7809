package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	httpRequestsInFlight  prometheus.Gauge
	httpRequestSizeBytes  *prometheus.HistogramVec
	httpResponseSizeBytes *prometheus.HistogramVec

	queueJobsTotal     *prometheus.CounterVec
	queueJobDuration   *prometheus.HistogramVec
	queueDepth         *prometheus.GaugeVec
	queueWorkersActive *prometheus.GaugeVec
)

// InitMetrics registers all Prometheus collectors. Call once at startup,
// before the first request or job is processed.
func InitMetrics() {
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	httpRequestSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	httpResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	queueJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_total",
			Help: "Total number of queue jobs processed",
		},
		[]string{"job_type", "status"},
	)

	queueJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_job_duration_seconds",
			Help:    "Queue job processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"job_type"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Number of jobs pending in queue",
		},
		[]string{"queue_name"},
	)

	queueWorkersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_workers_active",
			Help: "Number of workers currently processing jobs",
		},
		[]string{"queue_name"},
	)
}

// MetricsMiddleware records request count, latency, and payload sizes for
// every route. The /metrics endpoint itself is skipped, as is everything
// until InitMetrics has run.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" || httpRequestsTotal == nil {
				return next(c)
			}

			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			requestSize := float64(c.Request().ContentLength)
			if requestSize < 0 {
				requestSize = 0
			}

			err := next(c)

			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			httpRequestSizeBytes.WithLabelValues(method, path).Observe(requestSize)
			httpResponseSizeBytes.WithLabelValues(method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordQueueJobMetrics counts a processed job and records its duration in
// seconds. Jobs that return an error are labeled failed. A no-op until
// InitMetrics has run.
func RecordQueueJobMetrics(jobType string, duration float64, err error) {
	if queueJobsTotal == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failed"
	}

	queueJobsTotal.WithLabelValues(jobType, status).Inc()
	queueJobDuration.WithLabelValues(jobType).Observe(duration)
}

// UpdateQueueDepth sets the pending-job gauge for a queue.
func UpdateQueueDepth(queueName string, depth int64) {
	if queueDepth == nil {
		return
	}
	queueDepth.WithLabelValues(queueName).Set(float64(depth))
}

// UpdateActiveWorkers sets the busy-worker gauge for a queue.
func UpdateActiveWorkers(queueName string, count int) {
	if queueWorkersActive == nil {
		return
	}
	queueWorkersActive.WithLabelValues(queueName).Set(float64(count))
}
