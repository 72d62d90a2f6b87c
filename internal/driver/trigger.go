package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"
)

const ResolveFunction = "resolve_votes"

// Trigger submits the resolve_votes entry function. It has no guard of its
// own: calling it when no resolution is due is the caller's mistake.
type Trigger struct {
	ledger         ports.LedgerClient
	fn             domain.EntryFunction
	chainID        uint8
	requestTimeout time.Duration
	submitTimeout  time.Duration
}

// NewTrigger builds a trigger for coords. A non-zero chainID pins the
// network; the node must report the same id or nothing is submitted.
func NewTrigger(ledger ports.LedgerClient, coords domain.ModuleCoordinates, maxGas, gasUnitPrice uint64, chainID uint8, requestTimeout, submitTimeout time.Duration) *Trigger {
	return &Trigger{
		ledger: ledger,
		fn: domain.EntryFunction{
			Module:       coords,
			Function:     ResolveFunction,
			MaxGas:       maxGas,
			GasUnitPrice: gasUnitPrice,
		},
		chainID:        chainID,
		requestTimeout: requestTimeout,
		submitTimeout:  submitTimeout,
	}
}

func (t *Trigger) Resolve(ctx context.Context) (domain.TxOutcome, error) {
	chainCtx, cancel := withTimeout(ctx, t.requestTimeout)
	nodeChainID, err := t.ledger.ChainID(chainCtx)
	cancel()
	if err != nil {
		return domain.TxOutcome{}, domain.NewError(domain.KindLedgerMutationFailed, domain.StepLedgerChainID,
			fmt.Errorf("failed to get chain ID: %w", err))
	}
	if t.chainID != 0 && t.chainID != nodeChainID {
		return domain.TxOutcome{}, domain.NewError(domain.KindLedgerMutationFailed, domain.StepLedgerChainID,
			fmt.Errorf("configured chain ID %d does not match node chain ID %d", t.chainID, nodeChainID))
	}
	logger.Log.Info().Uint8("chain_id", nodeChainID).Msg("Using chain ID")

	submitCtx, cancel := withTimeout(ctx, t.submitTimeout)
	defer cancel()
	out, err := t.ledger.SubmitEntryFunction(submitCtx, t.fn)
	if err != nil {
		return out, domain.NewError(domain.KindLedgerMutationFailed, domain.StepLedgerTrigger,
			fmt.Errorf("failed to trigger vote resolution: %w", err))
	}
	logger.Log.Info().Str("hash", out.Hash).Uint64("version", out.Version).Uint64("gas_used", out.GasUsed).Msg("Submitted transaction")
	return out, nil
}
