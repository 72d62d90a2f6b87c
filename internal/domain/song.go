package domain

// CurrentSong is the head of the on-chain queue. StartMicros is the
// time_to_start_playing field as stored on chain, in microseconds since the
// Unix epoch.
type CurrentSong struct {
	TrackID     string
	StartMicros uint64
}

func (s CurrentSong) StartMillis() uint64 {
	return s.StartMicros / 1000
}
