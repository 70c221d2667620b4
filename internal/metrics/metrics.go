package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "elmundo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AccessChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_access_checks_total",
			Help: "Access verifications by outcome",
		},
		[]string{"result"},
	)

	AttendanceEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_attendance_events_total",
			Help: "Attendance records written by event type",
		},
		[]string{"action"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"type"},
	)

	SubscriptionUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_subscription_updates_total",
			Help: "Subscription updates by operation",
		},
		[]string{"operation"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_notifications_sent_total",
			Help: "Notifications dispatched by type and status",
		},
		[]string{"type", "status"},
	)

	ReminderSweepRecipients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "elmundo_reminder_sweep_recipients",
			Help: "Members notified by the last expiration sweep",
		},
	)

	HandlerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elmundo_handler_errors_total",
			Help: "Handler errors by service and error kind",
		},
		[]string{"service", "kind"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "elmundo_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAccessCheck(result string) {
	AccessChecksTotal.WithLabelValues(result).Inc()
}

func RecordAttendance(action string) {
	AttendanceEventsTotal.WithLabelValues(action).Inc()
}

func RecordSubscription(subType string) {
	SubscriptionsCreatedTotal.WithLabelValues(subType).Inc()
}

func RecordSubscriptionUpdate(operation string) {
	SubscriptionUpdatesTotal.WithLabelValues(operation).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsSentTotal.WithLabelValues(notificationType, status).Inc()
}

func RecordReminderSweep(sent int) {
	ReminderSweepRecipients.Set(float64(sent))
}

func RecordHandlerError(service, kind string) {
	HandlerErrorsTotal.WithLabelValues(service, kind).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}
