// Package common defines shared constants and sentinel errors used across
// the ArdhiHub server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Record state machine errors. ErrInvalidState marks a precondition
	// failure detected before any ledger call; ErrStateConflict marks a
	// lost compare-and-swap on the record row.
	ErrInvalidState  = errors.New("record in invalid state")
	ErrStateConflict = errors.New("record state conflict")

	// Vault errors. Decryption failures must never fall back to treating
	// the stored blob as plaintext.
	ErrEncryption = errors.New("encryption error")

	// Ledger errors. ErrSubmission means the ledger rejected the
	// transaction outright; ErrConfirmationTimeout means the outcome is
	// unknown within the polling bound, not that the transaction failed.
	ErrSubmission          = errors.New("transaction rejected by ledger")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
