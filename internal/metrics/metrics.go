// Package metrics records per-run Prometheus metrics and writes them in the node
// exporter textfile format, since a cron-driven run exits before any scrape.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cgv_watch"

// Recorder holds the collectors for one run
type Recorder struct {
	registry *prometheus.Registry

	FetchAttempts   *prometheus.CounterVec
	FarthestOffset  prometheus.Gauge
	TitlesExtracted prometheus.Gauge
	MatchedLines    prometheus.Gauge
	Notifications   *prometheus.CounterVec
	RunDuration     prometheus.Gauge
	LastRun         prometheus.Gauge
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Schedule fetches by outcome.",
			},
			[]string{"outcome"}, // usable, unusable, error
		),
		FarthestOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "farthest_date_offset_days",
			Help:      "Days between today and the farthest usable schedule, -1 when none.",
		}),
		TitlesExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "titles_extracted",
			Help:      "Titles extracted for the target hall.",
		}),
		MatchedLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matched_lines",
			Help:      "Document lines mentioning the target hall.",
		}),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Report deliveries by result.",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	r.registry.MustRegister(
		r.FetchAttempts,
		r.FarthestOffset,
		r.TitlesExtracted,
		r.MatchedLines,
		r.Notifications,
		r.RunDuration,
		r.LastRun,
	)
	r.FarthestOffset.Set(-1)

	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Finish records the run duration and completion time
func (r *Recorder) Finish(started, finished time.Time) {
	r.RunDuration.Set(finished.Sub(started).Seconds())
	r.LastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
