package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	emailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_emails_sent_total",
			Help: "Total number of emails delivered to the relay",
		},
	)

	sendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_send_failures_total",
			Help: "Total number of failed delivery attempts",
		},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_verifications_total",
			Help: "Total number of mailbox verifications by resulting status",
		},
		[]string{"status"},
	)

	jobsFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_scheduled_jobs_fired_total",
			Help: "Total number of scheduled send jobs fired",
		},
	)

	jobsMissed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_scheduled_jobs_missed_total",
			Help: "Total number of jobs found past due during startup recovery",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies per route
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordSend counts one delivered email
func RecordSend() {
	emailsSent.Inc()
}

// RecordSendFailure counts one failed delivery attempt
func RecordSendFailure() {
	sendFailures.Inc()
}

// RecordVerification counts one verification by resulting status
func RecordVerification(status string) {
	verifications.WithLabelValues(status).Inc()
}

// RecordJobFired counts one fired scheduled job
func RecordJobFired() {
	jobsFired.Inc()
}

// RecordJobMissed counts one past-due job surfaced during recovery
func RecordJobMissed() {
	jobsMissed.Inc()
}
