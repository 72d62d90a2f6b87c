package driver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
)

type memoryStore struct {
	cache   *domain.Cache
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func cloneCache(c *domain.Cache) *domain.Cache {
	if c == nil {
		return nil
	}
	out := &domain.Cache{TrackDurations: maps.Clone(c.TrackDurations)}
	if token, ok := c.Credential(); ok {
		out.SetCredential(token)
	}
	if out.TrackDurations == nil {
		out.TrackDurations = map[string]uint64{}
	}
	return out
}

func (s *memoryStore) Load(context.Context) (*domain.Cache, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return cloneCache(s.cache), nil
}

func (s *memoryStore) Save(_ context.Context, c *domain.Cache) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.cache = cloneCache(c)
	return nil
}

func (s *memoryStore) Close() error { return nil }

type fakeMetadata struct {
	validTokens map[string]bool
	durations   map[string]uint64
	issue       []string
	issueErr    error
	fetchErr    error

	issueCalls int
	fetches    map[string]int
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		validTokens: map[string]bool{},
		durations:   map[string]uint64{canaryTrackID: 215733},
		fetches:     map[string]int{},
	}
}

func (m *fakeMetadata) IssueToken(context.Context) (string, error) {
	m.issueCalls++
	if m.issueErr != nil {
		return "", m.issueErr
	}
	token := fmt.Sprintf("issued-token-%d", m.issueCalls)
	if len(m.issue) > 0 {
		token, m.issue = m.issue[0], m.issue[1:]
	}
	m.validTokens[token] = true
	return token, nil
}

func (m *fakeMetadata) TrackDuration(_ context.Context, token, trackID string) (uint64, error) {
	m.fetches[trackID]++
	if !m.validTokens[token] {
		return 0, errors.New("spotify returned status 401: The access token expired")
	}
	if m.fetchErr != nil && trackID != canaryTrackID {
		return 0, m.fetchErr
	}
	d, ok := m.durations[trackID]
	if !ok {
		return 0, fmt.Errorf("spotify returned status 404 for track %s", trackID)
	}
	return d, nil
}

type fakeLedger struct {
	resource    []byte
	resourceErr error
	chainID     uint8
	chainErr    error
	submitErr   error
	outcome     domain.TxOutcome

	resourceCalls []string
	submitted     []domain.EntryFunction
}

func (l *fakeLedger) Resource(_ context.Context, account, resourceType string) ([]byte, error) {
	l.resourceCalls = append(l.resourceCalls, account+" "+resourceType)
	return l.resource, l.resourceErr
}

func (l *fakeLedger) ChainID(context.Context) (uint8, error) {
	return l.chainID, l.chainErr
}

func (l *fakeLedger) SubmitEntryFunction(_ context.Context, fn domain.EntryFunction) (domain.TxOutcome, error) {
	l.submitted = append(l.submitted, fn)
	if l.submitErr != nil {
		return domain.TxOutcome{}, l.submitErr
	}
	return l.outcome, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type countingMetrics struct {
	hits, misses, refreshes int
	remaining               int64
	resolutions             []string
}

func (m *countingMetrics) CacheLookup(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}
func (m *countingMetrics) CredentialRefreshed()     { m.refreshes++ }
func (m *countingMetrics) Remaining(ms int64)       { m.remaining = ms }
func (m *countingMetrics) Resolution(o string)      { m.resolutions = append(m.resolutions, o) }
func (m *countingMetrics) Run(error, time.Duration) {}

const (
	canaryTrackID = "0H8XeaJunhvpBdBFIYi6Sh"
	account       = "0x0000000000000000000000000000000000000000000000000000000000000abc"
)

var coords = domain.ModuleCoordinates{
	Address: "0x000000000000000000000000000000000000000000000000000000000000cafe",
	Module:  "jukebox",
	Struct:  "Jukebox",
}

func jukeboxResource(trackIDs []string, startMicros string) []byte {
	queue := ""
	for i, id := range trackIDs {
		if i > 0 {
			queue += ","
		}
		queue += fmt.Sprintf(`{"track_id":%q}`, id)
	}
	return []byte(fmt.Sprintf(`{"type":%q,"data":{"inner":{"song_queue":[%s],"time_to_start_playing":%s}}}`,
		coords.ResourceType(), queue, startMicros))
}
