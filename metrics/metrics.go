// Package metrics records export run statistics in a private Prometheus
// registry that can be written out in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects the counters of one export run.
type Recorder struct {
	registry    *prometheus.Registry
	rows        *prometheus.CounterVec
	files       prometheus.Counter
	errors      *prometheus.CounterVec
	totalRows   prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlexport_rows_total",
			Help: "Rows read from the query, by outcome.",
		}, []string{"status"}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sqlexport_files_written_total",
			Help: "Output files written.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlexport_errors_total",
			Help: "Errors by kind.",
		}, []string{"kind"}),
		totalRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sqlexport_query_rows",
			Help: "Row count reported by the count query.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sqlexport_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sqlexport_last_run_success",
			Help: "1 if the last run finished without a fatal error.",
		}),
	}
	r.registry.MustRegister(r.rows, r.files, r.errors, r.totalRows, r.duration, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// QueryRows sets the counted row total.
func (r *Recorder) QueryRows(n int64) { r.totalRows.Set(float64(n)) }

// RowsExported adds n rows written to output files.
func (r *Recorder) RowsExported(n int) { r.rows.WithLabelValues("exported").Add(float64(n)) }

// RowSkipped counts one row dropped after a processing error.
func (r *Recorder) RowSkipped() { r.rows.WithLabelValues("skipped").Inc() }

// FileWritten counts one output file.
func (r *Recorder) FileWritten() { r.files.Inc() }

// Error counts a fatal or per-row error of the given kind.
func (r *Recorder) Error(kind string) { r.errors.WithLabelValues(kind).Inc() }

// Finish records the run duration and outcome.
func (r *Recorder) Finish(d time.Duration, ok bool) {
	r.duration.Set(d.Seconds())
	if ok {
		r.lastSuccess.Set(1)
	} else {
		r.lastSuccess.Set(0)
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
