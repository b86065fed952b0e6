package services

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/ledger"
	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/repomanager"
)

// Issuance and revocation step names, as reported by StepError.
const (
	StepCreateAsset = "create_asset"
	StepOptIn       = "opt_in"
	StepTransfer    = "transfer"
	StepClawback    = "clawback"
)

// Ledger is the transaction orchestration surface the tokenization workflow
// needs. Implemented by ledger.Orchestrator.
type Ledger interface {
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	SubmitAndConfirm(ctx context.Context, txn types.Transaction, privateKey ed25519.PrivateKey) (*ledger.Confirmation, error)
}

// StepError reports which workflow step failed. AssetID is non-zero when the
// asset was already minted before the failure: the record row is untouched,
// but the asset exists on the ledger and needs operator follow-up.
type StepError struct {
	Step    string
	AssetID uint64
	Err     error
}

func (e *StepError) Error() string {
	if e.AssetID != 0 {
		return fmt.Sprintf("step %s failed (asset %d already minted): %v", e.Step, e.AssetID, e.Err)
	}
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// TokenizationService drives the on-ledger lifecycle of land records:
// issuance (mint, opt-in, transfer) and revocation (clawback).
type TokenizationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	vault       KeyVault
	ledger      Ledger
	logger      logging.Logger
	locks       *keyedMutex
}

func NewTokenizationService(db *sql.DB, m repomanager.RepositoryManager, vault KeyVault, l Ledger, logger logging.Logger) *TokenizationService {
	return &TokenizationService{
		db:          db,
		repomanager: m,
		vault:       vault,
		ledger:      l,
		logger:      logger.With("module", "tokenization"),
		locks:       newKeyedMutex(),
	}
}

// Issue tokenizes holderID's pending land record: it mints the record's
// asset from the issuer account, has the holder opt in, and transfers the
// unit, each step submitted and confirmed before the next begins. Only
// after the transfer confirms is the record marked issued.
//
// All preconditions are checked before the first ledger call, so a rejected
// request costs nothing on chain. A failure between steps leaves the record
// unverified; if the asset was already minted, the returned StepError
// carries its id.
func (s *TokenizationService) Issue(ctx context.Context, issuerID string, holderID string) (*models.Record, error) {

	issuer, holder, record, err := s.loadParticipants(ctx, issuerID, holderID)
	if err != nil {
		return nil, err
	}
	if record.State() != models.StateUnverified {
		return nil, fmt.Errorf("%w: record %s is %s", common.ErrInvalidState, record.ID, record.State())
	}

	unlock := s.locks.Lock(record.ID)
	defer unlock()

	// Re-read under the lock: a concurrent issuance may have won the race
	// between the precondition check and here.
	recordRepo := s.repomanager.Records(s.db)
	record, err = recordRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if record.State() != models.StateUnverified {
		return nil, fmt.Errorf("%w: record %s is %s", common.ErrInvalidState, record.ID, record.State())
	}

	params, err := s.ledger.SuggestedParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading suggested params: %w", err)
	}

	assetName := fmt.Sprintf("%s %s - %s", holder.FirstName, holder.Surname, record.Location)
	createTxn, err := ledger.BuildAssetCreate(params, issuer.Address, assetName, "LAND", record.FileURL)
	if err != nil {
		return nil, &StepError{Step: StepCreateAsset, Err: err}
	}

	createConf, err := s.signAndConfirm(ctx, issuer, createTxn)
	if err != nil {
		return nil, &StepError{Step: StepCreateAsset, Err: err}
	}
	assetID := createConf.AssetIndex
	s.logger.Info(ctx, "asset created", "record_id", record.ID, "asset_id", assetID)

	optInTxn, err := ledger.BuildAssetOptIn(params, holder.Address, assetID)
	if err != nil {
		return nil, &StepError{Step: StepOptIn, AssetID: assetID, Err: err}
	}
	if _, err := s.signAndConfirm(ctx, holder, optInTxn); err != nil {
		return nil, &StepError{Step: StepOptIn, AssetID: assetID, Err: err}
	}

	transferTxn, err := ledger.BuildAssetTransfer(params, issuer.Address, holder.Address, assetID)
	if err != nil {
		return nil, &StepError{Step: StepTransfer, AssetID: assetID, Err: err}
	}
	transferConf, err := s.signAndConfirm(ctx, issuer, transferTxn)
	if err != nil {
		return nil, &StepError{Step: StepTransfer, AssetID: assetID, Err: err}
	}

	if err := recordRepo.MarkIssued(ctx, record.ID, assetID, transferConf.TxID); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "record issued",
		"record_id", record.ID, "asset_id", assetID, "txid", transferConf.TxID)

	return recordRepo.GetByID(ctx, record.ID)
}

// Revoke claws the record's asset back from the holder to the issuer and
// marks the record revoked. Only issued records can be revoked; revocation
// is terminal.
func (s *TokenizationService) Revoke(ctx context.Context, issuerID string, holderID string) (*models.Record, error) {

	issuer, holder, record, err := s.loadParticipants(ctx, issuerID, holderID)
	if err != nil {
		return nil, err
	}
	if record.State() != models.StateIssued {
		return nil, fmt.Errorf("%w: record %s is %s", common.ErrInvalidState, record.ID, record.State())
	}

	unlock := s.locks.Lock(record.ID)
	defer unlock()

	recordRepo := s.repomanager.Records(s.db)
	record, err = recordRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if record.State() != models.StateIssued {
		return nil, fmt.Errorf("%w: record %s is %s", common.ErrInvalidState, record.ID, record.State())
	}

	params, err := s.ledger.SuggestedParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading suggested params: %w", err)
	}

	clawbackTxn, err := ledger.BuildAssetClawback(params, issuer.Address, holder.Address, record.AssetID)
	if err != nil {
		return nil, &StepError{Step: StepClawback, Err: err}
	}
	conf, err := s.signAndConfirm(ctx, issuer, clawbackTxn)
	if err != nil {
		return nil, &StepError{Step: StepClawback, Err: err}
	}

	if err := recordRepo.MarkRevoked(ctx, record.ID, conf.TxID); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "record revoked",
		"record_id", record.ID, "asset_id", record.AssetID, "txid", conf.TxID)

	return recordRepo.GetByID(ctx, record.ID)
}

// loadParticipants resolves and authorizes both sides of a workflow call.
// Everything here runs before any ledger interaction.
func (s *TokenizationService) loadParticipants(ctx context.Context, issuerID, holderID string) (*models.User, *models.User, *models.Record, error) {

	userRepo := s.repomanager.Users(s.db)

	issuer, err := userRepo.GetByID(ctx, issuerID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !issuer.IsIssuer() {
		return nil, nil, nil, fmt.Errorf("%w: user %s is not an issuer", common.ErrUnauthorized, issuerID)
	}

	holder, err := userRepo.GetByID(ctx, holderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("holder %s: %w", holderID, common.ErrNotFound)
		}
		return nil, nil, nil, err
	}

	record, err := s.repomanager.Records(s.db).FindByOwner(ctx, holderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("record for holder %s: %w", holderID, common.ErrNotFound)
		}
		return nil, nil, nil, err
	}

	return issuer, holder, record, nil
}

// signAndConfirm opens the user's sealed key for exactly one transaction.
// The plaintext key lives only for the duration of the call and is wiped
// before returning, whatever the outcome.
func (s *TokenizationService) signAndConfirm(ctx context.Context, user *models.User, txn types.Transaction) (*ledger.Confirmation, error) {
	privateKey, err := s.vault.Decrypt(user.EncryptedPrivateKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(privateKey)

	return s.ledger.SubmitAndConfirm(ctx, txn, privateKey)
}
