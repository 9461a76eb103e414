package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Dispatch outcomes per delivery channel. channel: log, realtime, push.
	NotificationDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_count",
			Help: "Total number of notification channel deliveries",
		},
		[]string{"channel", "status"}, // status: success, failed, skipped, throttled
	)

	PushSendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "push_send_latency_ms",
			Help:    "Push provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)

	SweepRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calendar_sweep_duration_seconds",
			Help:    "Calendar release sweep pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	SweepProductsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_sweep_products_processed_total",
			Help: "Total number of due products processed by the sweep",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func IncrementDispatch(channel, status string) {
	NotificationDispatchCount.WithLabelValues(channel, status).Inc()
}

func RecordPushSendLatency(status string, duration time.Duration) {
	PushSendLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func RecordSweepRun(duration time.Duration, products int) {
	SweepRunDuration.Observe(duration.Seconds())
	SweepProductsProcessed.Add(float64(products))
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
