package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for loading,
// summarizing and mapping FARS data.
type Metrics struct {
	FilesLoaded  prometheus.Counter
	RowsLoaded   prometheus.Counter
	LoadDuration prometheus.Histogram
	LoadFailures *prometheus.CounterVec // labels: reason={not_found,schema,parse}

	YearsSkipped       prometheus.Counter
	SummariesBuilt     prometheus.Counter
	SummariesPublished prometheus.Counter
	PublishFailures    prometheus.Counter

	MapsRendered prometheus.Counter
	MapsEmpty    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.FilesLoaded,
		m.RowsLoaded,
		m.LoadDuration,
		m.LoadFailures,
		m.YearsSkipped,
		m.SummariesBuilt,
		m.SummariesPublished,
		m.PublishFailures,
		m.MapsRendered,
		m.MapsEmpty,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "files_loaded_total",
			Help:      "Total data files parsed successfully.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "rows_loaded_total",
			Help:      "Total accident rows parsed.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fars",
			Name:      "load_duration_seconds",
			Help:      "Time to locate, decompress and parse one data file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LoadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "load_failures_total",
			Help:      "Data file load failures by reason.",
		}, []string{"reason"}),
		YearsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "years_skipped_total",
			Help:      "Requested years left out of a multi-year load.",
		}),
		SummariesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "summaries_built_total",
			Help:      "Month-by-year summaries built.",
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "summaries_published_total",
			Help:      "Summaries written to the Kafka summary topic.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "publish_failures_total",
			Help:      "Summary publish attempts that failed.",
		}),
		MapsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "maps_rendered_total",
			Help:      "State maps handed to a renderer.",
		}),
		MapsEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "maps_empty_total",
			Help:      "State map requests with no accidents to plot.",
		}),
	}
}
