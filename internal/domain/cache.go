package domain

// Cache is the only state that survives between runs. Track durations are
// written once per track and never refreshed.
type Cache struct {
	SpotifyAccessToken *string           `json:"spotify_access_token"`
	TrackDurations     map[string]uint64 `json:"track_durations"`
}

func NewCache() *Cache {
	return &Cache{TrackDurations: make(map[string]uint64)}
}

func (c *Cache) Credential() (string, bool) {
	if c.SpotifyAccessToken == nil {
		return "", false
	}
	return *c.SpotifyAccessToken, true
}

func (c *Cache) SetCredential(token string) {
	c.SpotifyAccessToken = &token
}

func (c *Cache) Duration(trackID string) (uint64, bool) {
	d, ok := c.TrackDurations[trackID]
	return d, ok
}

func (c *Cache) SetDuration(trackID string, durationMs uint64) {
	if c.TrackDurations == nil {
		c.TrackDurations = make(map[string]uint64)
	}
	c.TrackDurations[trackID] = durationMs
}
