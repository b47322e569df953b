package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingAdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_booking_admissions_total",
			Help: "Booking admission attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
	)

	InvoicesPaidTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_invoices_paid_total",
			Help: "Total number of invoices paid",
		},
	)

	PromotionsAppliedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_promotions_applied_total",
			Help: "Total number of promotions applied",
		},
	)

	SessionsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_sessions_generated_total",
			Help: "Total number of class sessions created by the recurrence generator",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingAdmission(outcome string) {
	BookingAdmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordSubscriptionCreated() {
	SubscriptionsCreatedTotal.Inc()
}

func RecordInvoicePaid() {
	InvoicesPaidTotal.Inc()
}

func RecordPromotionApplied() {
	PromotionsAppliedTotal.Inc()
}

func RecordSessionsGenerated(n int) {
	SessionsGeneratedTotal.Add(float64(n))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
