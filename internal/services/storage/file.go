package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
)

// FileStore keeps the cache as a single JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load treats a missing or unreadable file as "no cache yet". Only a file
// that was read but does not parse is an error.
func (s *FileStore) Load(_ context.Context) (*domain.Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Log.Debug().Str("path", s.path).Msg("No cache file found")
		} else {
			logger.Log.Warn().Err(err).Str("path", s.path).Msg("Cache file unreadable, starting fresh")
		}
		return nil, nil
	}
	return decode(data)
}

// Save writes to a temp file in the same directory and renames it over the
// old record, so a crash never leaves a half-written cache.
func (s *FileStore) Save(_ context.Context, cache *domain.Cache) error {
	data, err := encode(cache)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("could not replace cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
