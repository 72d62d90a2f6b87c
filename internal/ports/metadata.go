package ports

import "context"

// MetadataService is the music metadata API. TrackDuration doubles as the
// credential probe when called with the canary track.
type MetadataService interface {
	IssueToken(ctx context.Context) (string, error)
	TrackDuration(ctx context.Context, token, trackID string) (uint64, error)
}
