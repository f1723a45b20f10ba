package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blview"

// Metrics holds the Prometheus counters, histograms, and gauges for the viewer.
type Metrics struct {
	// Ingestion.
	LoadsTotal       *prometheus.CounterVec // labels: outcome={success,error}
	LoadDuration     prometheus.Histogram
	SamplesDecoded   prometheus.Counter
	MalformedRows    prometheus.Counter
	StationsEmitted  prometheus.Gauge
	StationsSkipped  *prometheus.CounterVec // labels: reason
	DatasetVersion   prometheus.Gauge
	PipelineReady    prometheus.Gauge
	FetchRetries     prometheus.Counter
	ProfilePublished *prometheus.CounterVec // labels: outcome={success,error}

	// Serving.
	ChartRenders      *prometheus.CounterVec // labels: result={hit,miss}
	ChartRenderTime   prometheus.Histogram
	SelectionsTotal   prometheus.Counter
	ActiveSessions    prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec // labels: route, code
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the metrics with reg, for one-shot commands that
// keep their own registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Ingestion passes by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete fetch-decode-extract pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SamplesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_decoded_total",
			Help:      "Total sample rows decoded from the data source.",
		}),
		MalformedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_rows_total",
			Help:      "Total sample rows with at least one unreadable field.",
		}),
		StationsEmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_emitted",
			Help:      "Boundary-layer points in the current dataset.",
		}),
		StationsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_skipped_total",
			Help:      "Stations omitted from extraction by reason.",
		}, []string{"reason"}),
		DatasetVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_version",
			Help:      "Version of the dataset currently served.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a dataset has been loaded, 0 before.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Source fetches retried after a transport failure.",
		}),
		ProfilePublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_publish_total",
			Help:      "Profile publish attempts to Kafka by outcome.",
		}, []string{"outcome"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart requests by cache result.",
		}, []string{"result"}),
		ChartRenderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent rasterising a chart on a cache miss.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SelectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Station selection changes.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "View sessions currently held in memory.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LoadsTotal,
		m.LoadDuration,
		m.SamplesDecoded,
		m.MalformedRows,
		m.StationsEmitted,
		m.StationsSkipped,
		m.DatasetVersion,
		m.PipelineReady,
		m.FetchRetries,
		m.ProfilePublished,
		m.ChartRenders,
		m.ChartRenderTime,
		m.SelectionsTotal,
		m.ActiveSessions,
		m.HTTPRequestsTotal,
	}
}
