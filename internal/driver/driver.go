// Package driver decides, once per invocation, whether the jukebox round has
// reached its resolution point and if so resolves the votes on chain.
//
// A run is strictly sequential: load the cache, make sure the Spotify token
// works, read the head of the song queue, look up its duration, decide, and
// maybe submit resolve_votes. Any failure aborts the run; the next scheduled
// run retries, since an overdue round stays overdue.
//
// The scheduler must invoke the driver at least twice per threshold window,
// otherwise a resolution deadline can fall between two runs.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"
)

type Options struct {
	ThresholdMs    uint64
	RequestTimeout time.Duration
	DryRun         bool
}

// Driver owns the cache for the length of one Run. Runs must not overlap.
type Driver struct {
	store       ports.CacheStore
	credentials *CredentialManager
	tracks      *TrackResolver
	songs       *SongFetcher
	trigger     *Trigger
	clock       ports.Clock
	metrics     ports.Metrics
	opts        Options
}

func New(store ports.CacheStore, credentials *CredentialManager, tracks *TrackResolver, songs *SongFetcher, trigger *Trigger, clock ports.Clock, metrics ports.Metrics, opts Options) *Driver {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Driver{
		store:       store,
		credentials: credentials,
		tracks:      tracks,
		songs:       songs,
		trigger:     trigger,
		clock:       clock,
		metrics:     orNop(metrics),
		opts:        opts,
	}
}

func (d *Driver) Run(ctx context.Context) (domain.Report, error) {
	var report domain.Report

	cache, err := d.loadCache(ctx)
	if err != nil {
		return report, err
	}

	token, refreshed, err := d.credentials.Credential(ctx, cache)
	if err != nil {
		return report, err
	}
	report.CredentialRefreshed = refreshed

	song, err := d.songs.CurrentSong(ctx)
	if err != nil {
		return report, err
	}
	report.TrackID = song.TrackID
	report.StartMs = song.StartMillis()
	logger.Log.Info().Str("track_id", song.TrackID).Uint64("time_to_start_playing_us", song.StartMicros).Msg("Current song")

	duration, cached, err := d.tracks.Duration(ctx, cache, song.TrackID, token)
	if err != nil {
		return report, err
	}
	report.DurationMs = duration
	report.DurationCached = cached

	now := d.clock.Now().UnixMilli()
	if now < 0 {
		now = 0
	}
	report.NowMs = uint64(now)
	report.ShouldResolve = ShouldResolve(report.StartMs, duration, d.opts.ThresholdMs, report.NowMs)
	report.RemainingMs = RemainingMs(report.StartMs, duration, d.opts.ThresholdMs, report.NowMs)
	d.metrics.Remaining(report.RemainingMs)

	logger.Log.Info().
		Bool("should_resolve", report.ShouldResolve).
		Int64("remaining_ms", report.RemainingMs).
		Uint64("threshold_ms", d.opts.ThresholdMs).
		Msg("We should trigger vote resolution")

	switch {
	case !report.ShouldResolve:
		d.metrics.Resolution(ports.ResolutionSkipped)
		return report, nil
	case d.opts.DryRun:
		d.metrics.Resolution(ports.ResolutionDryRun)
		logger.Log.Warn().Msg("Dry run: not submitting resolve_votes")
		return report, nil
	}

	tx, err := d.trigger.Resolve(ctx)
	if err != nil {
		d.metrics.Resolution(ports.ResolutionFailed)
		return report, err
	}
	d.metrics.Resolution(ports.ResolutionSubmitted)
	report.Triggered = true
	report.Tx = &tx
	logger.Log.Info().Msg("Successfully triggered vote resolution")

	return report, nil
}

// loadCache returns the stored cache, or a new empty one that has already
// been persisted, so a fresh record exists after every first run.
func (d *Driver) loadCache(ctx context.Context) (*domain.Cache, error) {
	callCtx, cancel := withTimeout(ctx, d.opts.RequestTimeout)
	cache, err := d.store.Load(callCtx)
	cancel()
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, derr
		}
		return nil, domain.NewError(domain.KindCacheUnavailable, domain.StepCacheLoad, err)
	}
	if cache != nil {
		return cache, nil
	}

	cache = domain.NewCache()
	if err := saveCache(ctx, d.store, cache, d.opts.RequestTimeout); err != nil {
		return nil, err
	}
	logger.Log.Info().Msg("No cache found, wrote a fresh one")
	return cache, nil
}

func saveCache(ctx context.Context, store ports.CacheStore, cache *domain.Cache, timeout time.Duration) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	if err := store.Save(ctx, cache); err != nil {
		return domain.NewError(domain.KindCacheWriteFailed, domain.StepCacheSave, err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type nopMetrics struct{}

func (nopMetrics) CacheLookup(bool)         {}
func (nopMetrics) CredentialRefreshed()     {}
func (nopMetrics) Remaining(int64)          {}
func (nopMetrics) Resolution(string)        {}
func (nopMetrics) Run(error, time.Duration) {}

func orNop(m ports.Metrics) ports.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
