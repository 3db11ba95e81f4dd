// Package metrics provides Prometheus metrics for the knowledge base API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route template and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kb",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kb",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// FeedbackSubmitted counts accepted feedback by score.
	FeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kb",
			Name:      "feedback_submitted_total",
			Help:      "Total number of feedback entries accepted",
		},
		[]string{"score", "anonymous"},
	)

	// IdentitySyncs counts identity sync resolutions by outcome.
	IdentitySyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kb",
			Name:      "identity_sync_total",
			Help:      "Total number of identity sync resolutions",
		},
		[]string{"outcome"},
	)

	// ArticleMutations counts committed article writes.
	ArticleMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kb",
			Name:      "article_mutations_total",
			Help:      "Total number of committed article mutations",
		},
		[]string{"operation"},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordFeedback records one accepted feedback entry.
func RecordFeedback(score int, anonymous bool) {
	anon := "false"
	if anonymous {
		anon = "true"
	}
	FeedbackSubmitted.WithLabelValues(scoreLabel(score), anon).Inc()
}

// RecordIdentitySync records how an external identity was resolved.
func RecordIdentitySync(outcome string) {
	IdentitySyncs.WithLabelValues(outcome).Inc()
}

// RecordArticleMutation records a committed create, update or delete.
func RecordArticleMutation(operation string) {
	ArticleMutations.WithLabelValues(operation).Inc()
}

func scoreLabel(score int) string {
	switch score {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	case 4:
		return "4"
	case 5:
		return "5"
	default:
		return "invalid"
	}
}
