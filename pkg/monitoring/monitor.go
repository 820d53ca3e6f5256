package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// 投诉业务指标
var (
	ComplaintEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scms_complaint_events_total",
			Help: "Complaint mutations by event type",
		},
		[]string{"type"},
	)

	ComplaintsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scms_complaints",
			Help: "Current number of complaints by status",
		},
		[]string{"status"},
	)

	CriticalComplaints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scms_critical_complaints",
			Help: "Open complaints at critical urgency or above",
		},
	)

	AgingSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scms_aging_sweep_duration_seconds",
			Help:    "Duration of aging sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	AgedComplaints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scms_aged_complaints_total",
			Help: "Complaints whose day count was advanced by the aging sweep",
		},
	)

	ReminderAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scms_reminder_alerts_total",
			Help: "Reminder scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	PersistenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scms_persistence_failures_total",
			Help: "Failed snapshot saves",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scms_ws_connections",
			Help: "Connected alert websocket clients",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ComplaintEvents,
			ComplaintsByStatus,
			CriticalComplaints,
			AgingSweepDuration,
			AgedComplaints,
			ReminderAlerts,
			PersistenceFailures,
			WSConnections,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
