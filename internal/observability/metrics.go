package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "infocoord"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	supervisionChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervision",
			Name:      "checks_total",
			Help:      "Producer supervision checks by outcome.",
		},
		[]string{"healthy"},
	)
	supervisionPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "supervision",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one supervision pass over every producer.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	producerDeregistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "producer_deregistrations_total",
			Help:      "Producers removed, by reason.",
		},
		[]string{"reason"},
	)
	jobPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "pushes_total",
			Help:      "Job start pushes to producers by outcome.",
		},
		[]string{"success"},
	)
	recoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "attempts_total",
			Help:      "RIC recovery attempts by ric and final state.",
		},
		[]string{"ric", "outcome"},
	)
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Outbound notifications by kind and outcome.",
		},
		[]string{"kind", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			supervisionChecks,
			supervisionPassDuration,
			producerDeregistrations,
			jobPushes,
			recoveries,
			notifications,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordSupervisionCheck(healthy bool) {
	RegisterMetrics()
	supervisionChecks.WithLabelValues(strconv.FormatBool(healthy)).Inc()
}

func RecordSupervisionPass(duration time.Duration) {
	RegisterMetrics()
	supervisionPassDuration.Observe(duration.Seconds())
}

func RecordProducerDeregistered(reason string) {
	RegisterMetrics()
	producerDeregistrations.WithLabelValues(reason).Inc()
}

func RecordJobPush(success bool) {
	RegisterMetrics()
	jobPushes.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordRecovery(ric, outcome string) {
	RegisterMetrics()
	recoveries.WithLabelValues(ric, outcome).Inc()
}

func RecordNotification(kind string, success bool) {
	RegisterMetrics()
	notifications.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}
