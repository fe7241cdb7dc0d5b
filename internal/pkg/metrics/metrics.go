package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketgate_settlements_total",
		Help: "The total number of settlement calls processed",
	}, []string{"kind", "status"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	RoyaltyRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketgate_royalty_registrations_total",
		Help: "Total royalty registry writes",
	})

	BundleItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketgate_bundle_items",
		Help:    "Number of items per settled bundle",
		Buckets: []float64{1, 2, 3, 5, 10, 15, 20},
	})
)
