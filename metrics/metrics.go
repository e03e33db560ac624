// Package metrics records the figures of one report run for the node_exporter
// textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run holds the metrics of a single report run in its own registry
type Run struct {
	registry *prometheus.Registry
	started  time.Time

	RowsTotal   *prometheus.CounterVec
	RowsDropped *prometheus.CounterVec
	Days        prometheus.Gauge
	Listings    prometheus.Gauge
	Holidays    prometheus.Gauge
	ReportBytes prometheus.Gauge
	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewRun creates the run metrics and starts the duration clock
func NewRun(now time.Time) *Run {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Run{
		registry: reg,
		started:  now,

		RowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricereport_rows_total",
				Help: "Rows read from each input table",
			},
			[]string{"table"},
		),
		RowsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricereport_rows_dropped_total",
				Help: "Rows dropped while parsing, by table and reason",
			},
			[]string{"table", "reason"},
		),
		Days: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_days",
			Help: "Check-in dates in the report",
		}),
		Listings: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_listings",
			Help: "Listing observations in the report",
		}),
		Holidays: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_holidays",
			Help: "Public holidays within the report range",
		}),
		ReportBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_report_bytes",
			Help: "Size of the written report",
		}),
		Duration: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_duration_seconds",
			Help: "Wall time of the last run",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "pricereport_last_success_timestamp_seconds",
			Help: "Unix time the last report was written",
		}),
	}
}

// ObserveTable records how many rows a table had and why rows were dropped
func (r *Run) ObserveTable(table string, read int, dropped map[string]int) {
	r.RowsTotal.WithLabelValues(table).Add(float64(read))
	for reason, n := range dropped {
		r.RowsDropped.WithLabelValues(table, reason).Add(float64(n))
	}
}

// Finish stamps the duration and success time
func (r *Run) Finish(now time.Time, reportBytes int) {
	r.ReportBytes.Set(float64(reportBytes))
	r.Duration.Set(now.Sub(r.started).Seconds())
	r.LastSuccess.Set(float64(now.Unix()))
}

// Registry exposes the run registry
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics in text exposition format. The file is
// replaced atomically so a collector never reads a partial file.
func (r *Run) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
