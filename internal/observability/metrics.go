package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for downloads and imagery sync.
type Metrics struct {
	// Object store listing.
	ListPages prometheus.Counter
	ListKeys  prometheus.Counter

	// HTTP downloads.
	DownloadBytes    *prometheus.CounterVec   // labels: source={goes,ibtracs}
	DownloadDuration *prometheus.HistogramVec // labels: source={goes,ibtracs}
	DownloadErrors   *prometheus.CounterVec   // labels: source={goes,ibtracs}

	// Imagery sync.
	SyncHours    *prometheus.CounterVec // labels: outcome={stored,skipped,failed}
	SyncRunning  prometheus.Gauge
	FetchRetries prometheus.Counter

	// Track publishing.
	TracksPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ListPages,
		m.ListKeys,
		m.DownloadBytes,
		m.DownloadDuration,
		m.DownloadErrors,
		m.SyncHours,
		m.SyncRunning,
		m.FetchRetries,
		m.TracksPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ListPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "s3_list_pages_total",
			Help:      "ListObjectsV2 pages fetched from the object store.",
		}),
		ListKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "s3_list_keys_total",
			Help:      "Keys yielded by the object store paginator.",
		}),
		DownloadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "download_bytes_total",
			Help:      "Bytes downloaded over HTTP by source.",
		}, []string{"source"}),
		DownloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cyclone",
			Name:      "download_duration_seconds",
			Help:      "HTTP download duration in seconds by source.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		DownloadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "download_errors_total",
			Help:      "Failed HTTP downloads by source.",
		}, []string{"source"}),
		SyncHours: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "sync_hours_total",
			Help:      "Observation hours processed by the imagery sync, by outcome.",
		}, []string{"outcome"}),
		SyncRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone",
			Name:      "sync_running",
			Help:      "1 while the imagery sync is active, 0 otherwise.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "sync_fetch_retries_total",
			Help:      "Scan fetches retried by the imagery sync.",
		}),
		TracksPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone",
			Name:      "tracks_published_total",
			Help:      "Track observations written to Kafka.",
		}),
	}
}
