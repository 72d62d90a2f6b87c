package ports

import (
	"context"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
)

// CacheStore persists the driver cache between runs. Load returns (nil, nil)
// when no record exists yet; a record that exists but cannot be decoded is an
// error.
type CacheStore interface {
	Load(ctx context.Context) (*domain.Cache, error)
	Save(ctx context.Context, cache *domain.Cache) error
	Close() error
}
