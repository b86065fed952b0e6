package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/repomanager"
)

// RecordService exposes land record submission and read access. Holders see
// only their own record; issuers see everything.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m}
}

// Create registers a holder's land record in its initial unverified state.
// One record per holder: a second submission fails with ErrAlreadyExists.
func (s *RecordService) Create(ctx context.Context, userID string, location string, fileURL string) (*models.Record, error) {

	repo := s.repomanager.Records(s.db)

	if _, err := repo.FindByOwner(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: user %s already has a record", common.ErrAlreadyExists, userID)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	record := &models.Record{
		UserID:   userID,
		Location: location,
		FileURL:  fileURL,
	}

	record, err := repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("error creating record: %v", err)
	}

	return record, nil
}

// Get returns a record by id, restricted to its owner or an issuer.
func (s *RecordService) Get(ctx context.Context, caller *models.User, recordID string) (*models.Record, error) {

	record, err := s.repomanager.Records(s.db).GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if record.UserID != caller.ID && !caller.IsIssuer() {
		return nil, common.ErrUnauthorized
	}

	return record, nil
}

// GetOwn returns the caller's own record.
func (s *RecordService) GetOwn(ctx context.Context, userID string) (*models.Record, error) {
	return s.repomanager.Records(s.db).FindByOwner(ctx, userID)
}

// ListUnverified returns all records still awaiting issuance. Issuer only.
func (s *RecordService) ListUnverified(ctx context.Context, caller *models.User) ([]*models.Record, error) {

	if !caller.IsIssuer() {
		return nil, common.ErrUnauthorized
	}

	return s.repomanager.Records(s.db).ListUnverified(ctx)
}
