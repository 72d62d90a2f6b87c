package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder collects the metrics of a single run. The driver exits after one
// pass, so the registry is pushed rather than scraped.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	refreshes     prometheus.Counter
	remaining     prometheus.Gauge
	runDuration   prometheus.Histogram
	lastRunSecond prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "jukebox_driver_runs_total", Help: "Driver runs by outcome"},
			[]string{"outcome"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "jukebox_driver_resolutions_total", Help: "Vote resolution decisions by outcome"},
			[]string{"outcome"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "jukebox_driver_cache_lookups_total", Help: "Track duration cache lookups"},
			[]string{"result"},
		),
		refreshes: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "jukebox_driver_credential_refreshes_total", Help: "Spotify access token refreshes"},
		),
		remaining: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "jukebox_driver_remaining_ms", Help: "Milliseconds until resolution is due; negative once overdue"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jukebox_driver_run_duration_seconds",
				Help:    "Wall time of one driver run",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastRunSecond: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "jukebox_driver_last_run_timestamp_seconds", Help: "Unix time the last run finished"},
		),
	}
	r.registry.MustRegister(r.runs, r.resolutions, r.cacheLookups, r.refreshes, r.remaining, r.runDuration, r.lastRunSecond)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) CredentialRefreshed() { r.refreshes.Inc() }

func (r *Recorder) Remaining(ms int64) { r.remaining.Set(float64(ms)) }

func (r *Recorder) Resolution(outcome string) { r.resolutions.WithLabelValues(outcome).Inc() }

func (r *Recorder) Run(err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(elapsed.Seconds())
	r.lastRunSecond.SetToCurrentTime()
}

// Push sends the registry to a Prometheus Pushgateway, replacing the
// previous push for the same job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("could not push metrics to %s: %w", url, err)
	}
	return nil
}
