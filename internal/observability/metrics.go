package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cistern"

// Metrics holds the Prometheus counters, histograms, and gauges for the configurator.
type Metrics struct {
	Calculations        *prometheus.CounterVec // labels: outcome={matched,no_product,invalid,not_ready}
	ValidationFailures  *prometheus.CounterVec // labels: kind={missing_input,invalid_format,invalid_value}
	ProductMatches      *prometheus.CounterVec // labels: pass={1,2,3,none}
	RainfallLookups     *prometheus.CounterVec // labels: result={matched,default}
	CalculationDuration prometheus.Histogram

	// Reference data metrics.
	ReferenceLoads     *prometheus.CounterVec // labels: source={file,http,kafka}, outcome={success,error}
	ReferenceLoaded    prometheus.Gauge
	SnapshotsApplied   *prometheus.CounterVec // labels: dataset={rainfall,catalog}
	RateLimitRejection prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Sizing calculations by outcome.",
		}, []string{"outcome"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected site inputs by failure kind.",
		}, []string{"kind"}),
		ProductMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_match_total",
			Help:      "Product matches by the filter pass that produced them.",
		}, []string{"pass"}),
		RainfallLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rainfall_lookups_total",
			Help:      "Rainfall lookups by whether a postal-code record matched.",
		}, []string{"result"}),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Duration of a complete validate-size-match calculation.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		ReferenceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_loads_total",
			Help:      "Reference data loads by source and outcome.",
		}, []string{"source", "outcome"}),
		ReferenceLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_data_loaded",
			Help:      "1 when a reference snapshot is available, 0 otherwise.",
		}),
		SnapshotsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_applied_total",
			Help:      "Dataset snapshots applied from the snapshot feed.",
		}, []string{"dataset"}),
		RateLimitRejection: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "API requests rejected by the rate limiter.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Calculations,
		m.ValidationFailures,
		m.ProductMatches,
		m.RainfallLookups,
		m.CalculationDuration,
		m.ReferenceLoads,
		m.ReferenceLoaded,
		m.SnapshotsApplied,
		m.RateLimitRejection,
	}
}
