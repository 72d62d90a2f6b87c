package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindLedgerQueueEmpty, StepLedgerQuery, errors.New("song_queue is empty"))
	wrapped := fmt.Errorf("run failed: %w", err)

	assert.ErrorIs(t, wrapped, ErrLedgerQueueEmpty)
	assert.NotErrorIs(t, wrapped, ErrLedgerQueryFailed)
	assert.NotErrorIs(t, wrapped, NewError(KindLedgerQueueEmpty, StepCacheLoad, nil), "only bare kinds act as sentinels")
}

func TestError_UnwrapsCause(t *testing.T) {
	err := NewError(KindRemoteMetadataMalformed, StepMetadataFetch, fmt.Errorf("%w: duration_ms", ErrMalformedPayload))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "CACHE_CORRUPT", ErrCacheCorrupt.Error())
	assert.Equal(t, "cache.load: CACHE_CORRUPT", NewError(KindCacheCorrupt, StepCacheLoad, nil).Error())
	assert.Equal(t, "cache.load: CACHE_CORRUPT: unexpected EOF",
		NewError(KindCacheCorrupt, StepCacheLoad, errors.New("unexpected EOF")).Error())
}
