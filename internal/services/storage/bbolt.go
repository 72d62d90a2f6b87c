package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"

	"go.etcd.io/bbolt"
)

var (
	driverBucket = []byte("driver")
	cacheKey     = []byte("cache")
)

// BboltStore keeps the cache record in a bolt database. Bolt holds an
// exclusive file lock while open, so two overlapping runs cannot both use it.
type BboltStore struct {
	db *bbolt.DB
}

func NewBboltStore(dbPath string) (*BboltStore, error) {
	options := &bbolt.Options{Timeout: 1 * time.Second}
	db, err := bbolt.Open(dbPath, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("could not open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(driverBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create driver bucket: %w", err)
	}

	return &BboltStore{db: db}, nil
}

func (s *BboltStore) Load(_ context.Context) (*domain.Cache, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(driverBucket).Get(cacheKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading cache record: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decode(raw)
}

func (s *BboltStore) Save(_ context.Context, cache *domain.Cache) error {
	value, err := encode(cache)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(driverBucket).Put(cacheKey, value)
	})
}

func (s *BboltStore) Close() error {
	return s.db.Close()
}
