package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records the outcome of one run on a private registry, so that
// repeated runs in one process (tests) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	RowsLoaded    prometheus.Counter
	RowsRejected  prometheus.Counter
	ChartsWritten prometheus.Counter
	ChartsSkipped prometheus.Counter
	LatestYear    prometheus.Gauge
	RunDuration   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "regionstats_rows_loaded_total",
			Help: "Input rows kept after cleaning",
		}),
		RowsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "regionstats_rows_rejected_total",
			Help: "Input rows dropped by cleaning",
		}),
		ChartsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "regionstats_charts_written_total",
			Help: "Chart images written",
		}),
		ChartsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "regionstats_charts_skipped_total",
			Help: "Charts skipped for lack of data",
		}),
		LatestYear: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regionstats_latest_year",
			Help: "Most recent year present in the input",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regionstats_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
}

// ObserveRun records the duration of a run.
// Call with time.Now() at the start of the run.
func (m *Metrics) ObserveRun(start time.Time) {
	m.RunDuration.Set(time.Since(start).Seconds())
}

// Registry exposes the gatherer, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
