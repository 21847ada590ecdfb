package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AnalyzerMetrics holds all Prometheus metrics for the causeway service.
type AnalyzerMetrics struct {
	UploadsTotal      *prometheus.CounterVec
	ViewsTotal        *prometheus.CounterVec
	MotifsFound       prometheus.Counter
	PipelineDuration  prometheus.Histogram
	ViewCacheHits     prometheus.Counter
	ViewCacheMisses   prometheus.Counter
	WALActive         prometheus.Gauge
	WALReplayed       prometheus.Counter
	APIKeyCacheHits   prometheus.Counter
	APIKeyCacheMisses prometheus.Counter
}

// NewAnalyzerMetrics registers the metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewAnalyzerMetrics(reg prometheus.Registerer) *AnalyzerMetrics {
	f := promauto.With(reg)
	return &AnalyzerMetrics{
		UploadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "executions",
			Name:      "uploads_total",
			Help:      "Total number of execution uploads by status.",
		}, []string{"status"}), // status: stored, wal, error_construction, error_size, error_storage
		ViewsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "views",
			Name:      "requests_total",
			Help:      "Total number of view requests by status.",
		}, []string{"status"}), // status: ok, error_construction, error_query, error_transform
		MotifsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "views",
			Name:      "motifs_found_total",
			Help:      "Total number of motifs found across all views.",
		}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "causeway",
			Subsystem: "views",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent building, transforming and rendering a view.",
			Buckets:   prometheus.DefBuckets,
		}),
		ViewCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "views",
			Name:      "cache_hits_total",
			Help:      "Total number of view cache hits.",
		}),
		ViewCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "views",
			Name:      "cache_misses_total",
			Help:      "Total number of view cache misses.",
		}),
		WALActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "causeway",
			Subsystem: "wal",
			Name:      "active_gauge",
			Help:      "Indicates if uploads are currently diverted to the Write-Ahead Log (1 for active, 0 for inactive).",
		}),
		WALReplayed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "wal",
			Name:      "replayed_total",
			Help:      "Total number of executions moved from the WAL into the database.",
		}),
		APIKeyCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "causeway",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}
