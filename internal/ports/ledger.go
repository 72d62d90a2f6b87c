package ports

import (
	"context"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
)

// LedgerClient is everything the driver needs from the chain. Resource
// returns the raw resource document, or domain.ErrResourceNotFound.
type LedgerClient interface {
	Resource(ctx context.Context, account, resourceType string) ([]byte, error)
	ChainID(ctx context.Context) (uint8, error)
	SubmitEntryFunction(ctx context.Context, fn domain.EntryFunction) (domain.TxOutcome, error)
}
