package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PostsScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skytag",
			Name:      "posts_scanned_total",
			Help:      "Posts seen per batch, by outcome",
		},
		[]string{"outcome"}, // "processed" / "deduped" / "too_old" / "no_images"
	)

	ImagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skytag",
			Name:      "images_processed_total",
			Help:      "Images run through the OCR ensemble",
		},
		[]string{"status"}, // "ok" / "fetch_error"
	)

	RegistrationsMatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skytag",
			Name:      "registrations_matched_total",
			Help:      "Registration candidates accepted, by pattern family",
		},
		[]string{"family"},
	)

	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skytag",
			Name:      "flight_lookups_total",
			Help:      "Flight status lookups, by outcome",
		},
		[]string{"outcome"}, // "ok" / "cache_hit" / "render_timeout" / "extraction_error"
	)

	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skytag",
			Name:      "flight_lookup_duration_seconds",
			Help:      "Flight status lookup duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 15, 20, 30, 45, 60},
		},
	)

	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skytag",
			Name:      "publishes_total",
			Help:      "Reply submissions, by outcome",
		},
		[]string{"outcome"}, // "ok" / "error"
	)

	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skytag",
			Name:      "batch_duration_seconds",
			Help:      "Full scan batch duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

// RegisterPipelineMetrics registers all pipeline metrics with the default
// registry. Called explicitly from main (no init()).
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		PostsScannedTotal,
		ImagesProcessedTotal,
		RegistrationsMatchedTotal,
		LookupsTotal,
		LookupDuration,
		PublishesTotal,
		BatchDuration,
	)
}
