package driver

import (
	"context"
	"errors"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"
)

// TrackResolver maps track ids to durations. A duration is fetched at most
// once per track for the lifetime of the cache.
type TrackResolver struct {
	meta    ports.MetadataService
	store   ports.CacheStore
	timeout time.Duration
	metrics ports.Metrics
}

func NewTrackResolver(meta ports.MetadataService, store ports.CacheStore, timeout time.Duration, metrics ports.Metrics) *TrackResolver {
	return &TrackResolver{meta: meta, store: store, timeout: timeout, metrics: orNop(metrics)}
}

// Duration returns the track length in milliseconds and whether it came
// from the cache.
func (r *TrackResolver) Duration(ctx context.Context, cache *domain.Cache, trackID, token string) (uint64, bool, error) {
	if d, ok := cache.Duration(trackID); ok {
		r.metrics.CacheLookup(true)
		logger.Log.Info().Str("track_id", trackID).Uint64("duration_ms", d).Msg("Read length of track from cache")
		return d, true, nil
	}
	r.metrics.CacheLookup(false)

	callCtx, cancel := withTimeout(ctx, r.timeout)
	d, err := r.meta.TrackDuration(callCtx, token, trackID)
	cancel()
	if err != nil {
		kind := domain.KindMetadataUnavailable
		if errors.Is(err, domain.ErrMalformedPayload) {
			kind = domain.KindRemoteMetadataMalformed
		}
		return 0, false, domain.NewError(kind, domain.StepMetadataFetch, err)
	}

	cache.SetDuration(trackID, d)
	if err := saveCache(ctx, r.store, cache, r.timeout); err != nil {
		return 0, false, err
	}
	logger.Log.Info().Str("track_id", trackID).Uint64("duration_ms", d).Msg("Fetched length of track from Spotify API and cached it")
	return d, false, nil
}
