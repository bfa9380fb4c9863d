// Package metrics holds the Prometheus instruments for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ProfilesCreated   prometheus.Counter
	ProfilesRenewed   prometheus.Counter
	ProfilesApproved  prometheus.Counter
	NotificationsSent *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "youth_profiles_created_total",
			Help: "Total number of youth profiles created",
		}),
		ProfilesRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "youth_profiles_renewed_total",
			Help: "Total number of youth membership renewals",
		}),
		ProfilesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "youth_profiles_approved_total",
			Help: "Total number of youth profiles approved by a guardian",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "youth_notifications_sent_total",
			Help: "Total number of notification messages published, by template",
		}, []string{"template"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
