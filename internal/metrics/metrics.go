// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartoffer_offers_added_total",
			Help: "Offers stored",
		},
	)

	ApplyOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartoffer_apply_total",
			Help: "Apply-offer calls by outcome",
		},
		[]string{"outcome"},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartoffer_access_denied_total",
			Help: "Requests rejected by the access gate",
		},
		[]string{"operation", "reason"},
	)

	SegmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartoffer_segment_lookups_total",
			Help: "Segment lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartoffer_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)
