package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindCacheCorrupt            ErrorKind = "CACHE_CORRUPT"
	KindCacheUnavailable        ErrorKind = "CACHE_UNAVAILABLE"
	KindCacheWriteFailed        ErrorKind = "CACHE_WRITE_FAILED"
	KindCredentialUnobtainable  ErrorKind = "CREDENTIAL_UNOBTAINABLE"
	KindRemoteMetadataMalformed ErrorKind = "REMOTE_METADATA_MALFORMED"
	KindMetadataUnavailable     ErrorKind = "METADATA_UNAVAILABLE"
	KindLedgerQueryFailed       ErrorKind = "LEDGER_QUERY_FAILED"
	KindLedgerQueueEmpty        ErrorKind = "LEDGER_QUEUE_EMPTY"
	KindLedgerMutationFailed    ErrorKind = "LEDGER_MUTATION_FAILED"
	KindConfigInvalid           ErrorKind = "CONFIG_INVALID"
)

// Step names identify which part of a run failed.
const (
	StepCacheLoad         = "cache.load"
	StepCacheSave         = "cache.save"
	StepCredentialProbe   = "credential.probe"
	StepCredentialRefresh = "credential.refresh"
	StepMetadataFetch     = "metadata.fetch"
	StepLedgerQuery       = "ledger.query"
	StepLedgerChainID     = "ledger.chain_id"
	StepLedgerTrigger     = "ledger.trigger"
	StepConfig            = "config"
)

// Error is the error type returned by every driver step.
type Error struct {
	Kind ErrorKind
	Step string
	Err  error
}

func NewError(kind ErrorKind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Step == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Step, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrLedgerQueueEmpty) holds for any
// step that reported an empty queue.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Step == "" && t.Err == nil
}

var (
	ErrCacheCorrupt            = &Error{Kind: KindCacheCorrupt}
	ErrCacheUnavailable        = &Error{Kind: KindCacheUnavailable}
	ErrCacheWriteFailed        = &Error{Kind: KindCacheWriteFailed}
	ErrCredentialUnobtainable  = &Error{Kind: KindCredentialUnobtainable}
	ErrRemoteMetadataMalformed = &Error{Kind: KindRemoteMetadataMalformed}
	ErrMetadataUnavailable     = &Error{Kind: KindMetadataUnavailable}
	ErrLedgerQueryFailed       = &Error{Kind: KindLedgerQueryFailed}
	ErrLedgerQueueEmpty        = &Error{Kind: KindLedgerQueueEmpty}
	ErrLedgerMutationFailed    = &Error{Kind: KindLedgerMutationFailed}
	ErrConfigInvalid           = &Error{Kind: KindConfigInvalid}
)

// Adapter-level sentinels. Adapters wrap these so the driver can classify
// failures without importing them.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrMalformedPayload = errors.New("malformed payload")
)
