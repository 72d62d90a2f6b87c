package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"

	"github.com/buger/jsonparser"
)

// SongFetcher reads the head of the on-chain song queue. The resource lives
// under the jukebox owner's account, typed by the module that defines it.
type SongFetcher struct {
	ledger  ports.LedgerClient
	account string
	coords  domain.ModuleCoordinates
	timeout time.Duration
}

func NewSongFetcher(ledger ports.LedgerClient, account string, coords domain.ModuleCoordinates, timeout time.Duration) *SongFetcher {
	return &SongFetcher{ledger: ledger, account: account, coords: coords, timeout: timeout}
}

func (f *SongFetcher) CurrentSong(ctx context.Context) (domain.CurrentSong, error) {
	ctx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.ledger.Resource(ctx, f.account, f.coords.ResourceType())
	if err != nil {
		return domain.CurrentSong{}, domain.NewError(domain.KindLedgerQueryFailed, domain.StepLedgerQuery,
			fmt.Errorf("failed to get resource to determine current song info: %w", err))
	}
	return parseJukebox(body)
}

func parseJukebox(body []byte) (domain.CurrentSong, error) {
	fail := func(format string, args ...any) (domain.CurrentSong, error) {
		err := fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformedPayload}, args...)...)
		return domain.CurrentSong{}, domain.NewError(domain.KindLedgerQueryFailed, domain.StepLedgerQuery, err)
	}

	inner, typ, _, err := jsonparser.Get(body, "data", "inner")
	if err != nil || typ != jsonparser.Object {
		return fail("no object \"data.inner\" in resource")
	}

	queue, typ, _, err := jsonparser.Get(inner, "song_queue")
	if err != nil || typ != jsonparser.Array {
		return fail("no array \"song_queue\" in data")
	}
	head, _, _, err := jsonparser.Get(queue, "[0]")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return domain.CurrentSong{}, domain.NewError(domain.KindLedgerQueueEmpty, domain.StepLedgerQuery,
			errors.New("song_queue is empty"))
	}
	if err != nil {
		return fail("could not read head of song_queue: %v", err)
	}

	trackID, err := jsonparser.GetString(head, "track_id")
	if err != nil {
		return fail("no string \"track_id\" in current song")
	}
	if trackID == "" {
		return fail("empty \"track_id\" in current song")
	}

	raw, typ, _, err := jsonparser.Get(inner, "time_to_start_playing")
	if err != nil {
		return fail("no field \"time_to_start_playing\" in data")
	}
	if typ != jsonparser.String && typ != jsonparser.Number {
		return fail("time_to_start_playing is a %s, want a u64", typ)
	}
	start, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return fail("time_to_start_playing %q is not a u64", raw)
	}

	return domain.CurrentSong{TrackID: trackID, StartMicros: start}, nil
}
