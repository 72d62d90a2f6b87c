package driver

import (
	"math"
	"math/bits"
)

// ShouldResolve reports whether vote resolution is due: the song playing
// since startMs has less than thresholdMs left. All values are milliseconds.
//
// It never wraps: when thresholdMs exceeds startMs+durationMs the song is
// already inside its resolution window and the answer is true.
func ShouldResolve(startMs, durationMs, thresholdMs, nowMs uint64) bool {
	end := songEnd(startMs, durationMs)
	if thresholdMs > end {
		return true
	}
	return nowMs > end-thresholdMs
}

// RemainingMs is the signed time until ShouldResolve flips to true. It is
// negative once resolution is due.
func RemainingMs(startMs, durationMs, thresholdMs, nowMs uint64) int64 {
	end := songEnd(startMs, durationMs)
	var resolveAt uint64
	if thresholdMs <= end {
		resolveAt = end - thresholdMs
	}
	if resolveAt >= nowMs {
		return clampInt64(resolveAt - nowMs)
	}
	return -clampInt64(nowMs - resolveAt)
}

func songEnd(startMs, durationMs uint64) uint64 {
	end, carry := bits.Add64(startMs, durationMs, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return end
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
