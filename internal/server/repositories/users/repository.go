// Package users provides the PostgreSQL-backed repository for ledger
// account holders.
package users

import (
	"context"

	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLogin(ctx context.Context, username string) (*models.User, error)
}
