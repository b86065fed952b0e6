// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/IscoRuta98/ArdhiHub-server/internal/dbx"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/records"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/refreshtokens"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run them against the shared pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
