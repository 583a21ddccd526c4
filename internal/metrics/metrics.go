package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
	ScheduleConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_conflicts_total",
			Help: "Writes rejected because they overlap an existing appointment or time block",
		},
		[]string{"resource", "conflicts_with"},
	)
	ScheduleWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_writes_total",
			Help: "Committed appointment and time block writes",
		},
		[]string{"resource", "operation"},
	)
	InvitationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_invitations_total",
			Help: "Client invitations created, by email delivery outcome",
		},
		[]string{"delivery"},
	)
)
