package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "choropleth"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// choropleth service.
type Metrics struct {
	// Load metrics.
	Loads        *prometheus.CounterVec   // labels: source={boundaries,temperature,sunshine,precipitation}, outcome={success,error}
	LoadDuration *prometheus.HistogramVec // labels: source
	FetchCache   *prometheus.CounterVec   // labels: result={hit,miss}

	// Panel metrics.
	Renders          *prometheus.CounterVec // labels: panel
	RenderErrors     *prometheus.CounterVec // labels: panel
	Hovers           *prometheus.CounterVec // labels: panel
	RegionMismatches *prometheus.CounterVec // labels: metric
	PanelState       *prometheus.GaugeVec   // labels: panel; 0 loading, 1 ready, 2 error

	// Interaction event stream.
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	EventsEnabled      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.Loads,
		m.LoadDuration,
		m.FetchCache,
		m.Renders,
		m.RenderErrors,
		m.Hovers,
		m.RegionMismatches,
		m.PanelState,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventsEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      help("Boundary and table loads by source and outcome."),
		}, []string{"source", "outcome"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      help("Duration of fetch plus parse per source."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      help("Remote fetch cache lookups by result."),
		}, []string{"result"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      help("Completed panel render passes."),
		}, []string{"panel"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      help("Render passes that moved a panel into the error state."),
		}, []string{"panel"}),
		Hovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hovers_total",
			Help:      help("Region hover events by panel."),
		}, []string{"panel"}),
		RegionMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_mismatches_total",
			Help:      help("Boundary regions and table columns without a counterpart."),
		}, []string{"metric"}),
		PanelState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_state",
			Help:      help("Panel state: 0 loading, 1 ready, 2 error."),
		}, []string{"panel"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      help("Interaction events written to the event stream."),
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      help("Failed interaction event batch writes."),
		}),
		EventsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_enabled",
			Help:      help("1 when the interaction event stream is enabled, 0 otherwise."),
		}),
	}
}
