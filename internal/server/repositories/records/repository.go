// Package records provides the PostgreSQL-backed repository for land
// records, including the guarded state transitions used by the
// tokenization workflow.
package records

import (
	"context"

	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.Record) (*models.Record, error)
	GetByID(ctx context.Context, id string) (*models.Record, error)
	FindByOwner(ctx context.Context, userID string) (*models.Record, error)
	ListUnverified(ctx context.Context) ([]*models.Record, error)

	// MarkIssued persists the successful issuance outcome with a guard
	// on the current state: it only updates a row that is still
	// unverified, returning common.ErrStateConflict otherwise.
	MarkIssued(ctx context.Context, id string, assetID uint64, txID string) error

	// MarkRevoked persists the successful revocation outcome, guarded
	// on the row being issued and not yet revoked.
	MarkRevoked(ctx context.Context, id string, txID string) error
}
