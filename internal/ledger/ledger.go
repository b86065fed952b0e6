// Package ledger wraps access to the Algorand ledger: a narrow client
// interface over algod, builders for the asset transactions this system
// issues, and an orchestrator that signs, submits, and awaits confirmation
// of a single transaction.
//
// The orchestrator never retries a submission. A mutating transaction is
// only safe to resubmit after being rebuilt with fresh parameters, so retry
// policy belongs to the caller, not this layer.
package ledger

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// Client is the subset of the algod API the orchestrator needs. It exists
// so workflows can be exercised against a stub ledger in tests.
type Client interface {
	// SuggestedParams fetches current consensus parameters for building
	// a transaction.
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)

	// Submit broadcasts a signed transaction and returns its id. A
	// rejection here is final for this submission.
	Submit(ctx context.Context, signed []byte) (string, error)

	// PendingInfo reports the confirmation state of a submitted
	// transaction.
	PendingInfo(ctx context.Context, txid string) (PendingInfo, error)

	// LastRound returns the latest round the node has seen.
	LastRound(ctx context.Context) (uint64, error)

	// WaitAfterRound blocks until the node has advanced past the given
	// round.
	WaitAfterRound(ctx context.Context, round uint64) error
}

// PendingInfo is the confirmation state of one transaction.
type PendingInfo struct {
	// ConfirmedRound is non-zero once the transaction is final.
	ConfirmedRound uint64

	// AssetIndex carries the minted asset id for asset-creation
	// transactions.
	AssetIndex uint64

	// PoolError is set when the node dropped the transaction from its
	// pool; the transaction will never confirm.
	PoolError string
}

// Confirmation is the result of a confirmed transaction.
type Confirmation struct {
	TxID           string
	ConfirmedRound uint64
	AssetIndex     uint64
}
