package ledger

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
)

// Orchestrator signs, submits, and awaits confirmation of single
// transactions against an injected Client. maxRounds bounds the number of
// rounds waited for confirmation; exceeding it does not mean the
// transaction failed, only that its outcome is unknown within the bound.
type Orchestrator struct {
	client    Client
	maxRounds uint64
	logger    logging.Logger
}

func NewOrchestrator(client Client, maxRounds uint64, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		client:    client,
		maxRounds: maxRounds,
		logger:    logger.With("module", "ledger"),
	}
}

// SuggestedParams exposes current consensus parameters for transaction
// builders.
func (o *Orchestrator) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return o.client.SuggestedParams(ctx)
}

// SubmitAndConfirm signs txn with privateKey, submits it, and polls the
// ledger round by round until the transaction confirms or maxRounds elapse.
//
// Outright rejection (bad parameters, insufficient balance, missing opt-in)
// surfaces as common.ErrSubmission without retry. An exhausted polling
// bound surfaces as common.ErrConfirmationTimeout; the transaction may
// still confirm out of band, so the caller must not treat this as failure
// or blindly resubmit. The caller owns the lifetime of privateKey.
func (o *Orchestrator) SubmitAndConfirm(ctx context.Context, txn types.Transaction, privateKey ed25519.PrivateKey) (*Confirmation, error) {
	txid, signed, err := crypto.SignTransaction(privateKey, txn)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	if _, err := o.client.Submit(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSubmission, err)
	}
	o.logger.Info(ctx, "transaction submitted", "txid", txid)

	lastRound, err := o.client.LastRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger status: %w", err)
	}

	for round := lastRound; round < lastRound+o.maxRounds; round++ {
		info, err := o.client.PendingInfo(ctx, txid)
		if err != nil {
			return nil, fmt.Errorf("polling confirmation for %s: %w", txid, err)
		}

		if info.PoolError != "" {
			return nil, fmt.Errorf("%w: pool error for %s: %s", common.ErrSubmission, txid, info.PoolError)
		}

		if info.ConfirmedRound > 0 {
			o.logger.Info(ctx, "transaction confirmed", "txid", txid, "round", info.ConfirmedRound)
			return &Confirmation{
				TxID:           txid,
				ConfirmedRound: info.ConfirmedRound,
				AssetIndex:     info.AssetIndex,
			}, nil
		}

		// A cancelled context surfaces here as a timeout: the
		// transaction is already submitted and cannot be withdrawn,
		// so the outcome stays unknown rather than failed.
		if err := o.client.WaitAfterRound(ctx, round); err != nil {
			return nil, fmt.Errorf("%w: waiting for round %d: %v", common.ErrConfirmationTimeout, round+1, err)
		}
	}

	return nil, fmt.Errorf("%w: txid %s not confirmed within %d rounds", common.ErrConfirmationTimeout, txid, o.maxRounds)
}
