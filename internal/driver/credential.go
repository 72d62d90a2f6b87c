package driver

import (
	"context"
	"errors"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"
)

// CredentialManager hands out a working Spotify token. A cached token is
// trusted only after a real lookup of the canary track succeeds with it.
type CredentialManager struct {
	meta    ports.MetadataService
	store   ports.CacheStore
	canary  string
	timeout time.Duration
	metrics ports.Metrics
}

func NewCredentialManager(meta ports.MetadataService, store ports.CacheStore, canaryTrackID string, timeout time.Duration, metrics ports.Metrics) *CredentialManager {
	return &CredentialManager{meta: meta, store: store, canary: canaryTrackID, timeout: timeout, metrics: orNop(metrics)}
}

// Credential returns a token and whether it had to be refreshed. A refresh
// is written to the cache and persisted before returning.
func (m *CredentialManager) Credential(ctx context.Context, cache *domain.Cache) (string, bool, error) {
	if token, ok := cache.Credential(); ok {
		err := m.probe(ctx, token)
		if err == nil {
			logger.Log.Info().Str("token", logger.Redact(token)).Msg("Using cached Spotify access token")
			return token, false, nil
		}
		logger.Log.Info().Err(err).Msg("Cached access token didn't work, getting a new one")
	} else {
		logger.Log.Debug().Msg("No cached Spotify access token")
	}

	token, err := m.refresh(ctx, cache)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (m *CredentialManager) probe(ctx context.Context, token string) error {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()
	if _, err := m.meta.TrackDuration(ctx, token, m.canary); err != nil {
		return domain.NewError(domain.KindCredentialUnobtainable, domain.StepCredentialProbe, err)
	}
	return nil
}

func (m *CredentialManager) refresh(ctx context.Context, cache *domain.Cache) (string, error) {
	callCtx, cancel := withTimeout(ctx, m.timeout)
	token, err := m.meta.IssueToken(callCtx)
	cancel()
	if err != nil {
		return "", domain.NewError(domain.KindCredentialUnobtainable, domain.StepCredentialRefresh, err)
	}
	if token == "" {
		return "", domain.NewError(domain.KindCredentialUnobtainable, domain.StepCredentialRefresh, errors.New("token endpoint returned an empty access token"))
	}
	m.metrics.CredentialRefreshed()
	logger.Log.Debug().Str("token", logger.Redact(token)).Msg("Got new Spotify access token")

	cache.SetCredential(token)
	if err := saveCache(ctx, m.store, cache, m.timeout); err != nil {
		return "", err
	}
	return token, nil
}
