// Package refreshtokens provides a PostgreSQL-backed repository for
// refresh tokens used in the authentication flow.
package refreshtokens

import (
	"context"
	"time"

	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
