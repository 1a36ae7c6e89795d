// Package metrics registers the Prometheus instruments for the extraction
// and classification pipelines.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "productlens_extraction_duration_seconds",
		Help:    "End to end duration of a product extraction",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	FieldSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productlens_field_source_total",
		Help: "Resolutions per field by winning strategy tier",
	}, []string{"field", "source"})

	ClassificationConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "productlens_classification_confidence",
		Help:    "Confidence score distribution of classifications",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productlens_cache_hits_total",
		Help: "Redis cache hits by cache name",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productlens_cache_misses_total",
		Help: "Redis cache misses by cache name",
	}, []string{"cache"})

	TaxonomyRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "productlens_taxonomy_refreshes_total",
		Help: "Completed taxonomy snapshot rebuilds",
	})

	ExtractionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "productlens_extraction_errors_total",
		Help: "Extraction failures by stage",
	}, []string{"stage"})
)

// Handler exposes the default registry as a Fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
