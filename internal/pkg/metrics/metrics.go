package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunDuration tracks how long full synchronization runs take.
	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Duration of synchronization runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"actor", "outcome"}, // outcome: completed or stopped
	)

	// OffersProcessed counts reconciled offer records by result.
	OffersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_offers_processed_total",
			Help: "Offer records handled by the sync pipeline, by result",
		},
		[]string{"result"}, // created, updated, unchanged, failed
	)

	// ProviderRequests counts outbound provider attempts by outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_provider_requests_total",
			Help: "Outbound HTTP attempts to providers, by host and outcome",
		},
		[]string{"host", "outcome"},
	)
)

func RecordRunDuration(actor, outcome string, d time.Duration) {
	SyncRunDuration.WithLabelValues(actor, outcome).Observe(d.Seconds())
}

func RecordOffer(result string) {
	OffersProcessed.WithLabelValues(result).Inc()
}

func RecordProviderRequest(host, outcome string) {
	ProviderRequests.WithLabelValues(host, outcome).Inc()
}
