package models

import "time"

// RecordState is the lifecycle position of a land record.
//
// Transitions are strictly Unverified -> Issued -> Revoked. Failed ledger
// workflows leave the state untouched, and nothing leaves Revoked.
type RecordState string

const (
	StateUnverified RecordState = "unverified"
	StateIssued     RecordState = "issued"
	StateRevoked    RecordState = "revoked"
)

// Record is one physical land document submitted for tokenization.
//
// AssetID and TransactionID are set together with Verified when issuance
// completes; RevokeTransactionID is set together with Revoked. AssetID is a
// cached pointer into the ledger, which remains the authority on asset
// ownership.
type Record struct {
	ID                  string
	UserID              string
	Location            string
	FileURL             string
	Verified            bool
	AssetID             uint64
	TransactionID       string
	RevokeTransactionID string
	Revoked             bool
	CreatedAt           time.Time
}

// State derives the lifecycle position from the persisted flags.
func (r *Record) State() RecordState {
	switch {
	case r.Revoked:
		return StateRevoked
	case r.Verified:
		return StateIssued
	default:
		return StateUnverified
	}
}
