package storage

import (
	"encoding/json"
	"fmt"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// New picks the backend named in cfg.
func New(cfg domain.CacheConfig) (ports.CacheStore, error) {
	switch cfg.Backend {
	case domain.CacheBackendFile:
		return NewFileStore(cfg.Path), nil
	case domain.CacheBackendBolt:
		return NewBboltStore(cfg.Path)
	case domain.CacheBackendS3:
		awsConfig := &aws.Config{
			Region:           aws.String(cfg.S3.Region),
			S3ForcePathStyle: aws.Bool(cfg.S3.Endpoint != ""),
		}
		if cfg.S3.Endpoint != "" {
			awsConfig.Endpoint = aws.String(cfg.S3.Endpoint)
		}
		if cfg.S3.AccessKeyID != "" {
			awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
		}
		sess, err := session.NewSession(awsConfig)
		if err != nil {
			return nil, fmt.Errorf("could not create s3 session: %w", err)
		}
		return NewS3Store(sess, cfg.S3.Bucket, cfg.S3.Key), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// decode parses a stored record. Failure means the record exists but is
// unusable, which callers must not treat as "absent".
func decode(data []byte) (*domain.Cache, error) {
	var cache domain.Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, domain.NewError(domain.KindCacheCorrupt, domain.StepCacheLoad, err)
	}
	if cache.TrackDurations == nil {
		cache.TrackDurations = make(map[string]uint64)
	}
	return &cache, nil
}

func encode(cache *domain.Cache) ([]byte, error) {
	normalized := *cache
	if normalized.TrackDurations == nil {
		normalized.TrackDurations = map[string]uint64{}
	}
	data, err := json.Marshal(&normalized)
	if err != nil {
		return nil, fmt.Errorf("error serializing cache: %w", err)
	}
	return data, nil
}
