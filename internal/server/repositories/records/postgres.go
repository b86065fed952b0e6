package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/dbx"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new unverified record.
func (r *PostgresRepository) Create(ctx context.Context, record *models.Record) (*models.Record, error) {
	query := `
		INSERT INTO records (user_id, location, file_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		record.UserID, record.Location, record.FileURL,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

const selectRecord = `
	SELECT id, user_id, location, file_url, verified,
		COALESCE(asset_id, 0), COALESCE(transaction_id, ''),
		COALESCE(revoke_transaction_id, ''), revoked, created_at
	FROM records
`

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	record := &models.Record{}
	err := scan(&record.ID, &record.UserID, &record.Location, &record.FileURL,
		&record.Verified, &record.AssetID, &record.TransactionID,
		&record.RevokeTransactionID, &record.Revoked, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

// GetByID returns the record with the given id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, selectRecord+` WHERE id = $1`, id)
	return scanRecord(row.Scan)
}

// FindByOwner returns the newest record owned by userID, or
// common.ErrNotFound. The deployment keeps one active record per user.
func (r *PostgresRepository) FindByOwner(ctx context.Context, userID string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx,
		selectRecord+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	return scanRecord(row.Scan)
}

// ListUnverified returns all records still awaiting issuance.
func (r *PostgresRepository) ListUnverified(ctx context.Context) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord+` WHERE NOT verified ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkIssued is the compare-and-swap closing an issuance: the WHERE clause
// refuses rows that were issued concurrently, so two racing workflows
// cannot both claim the record.
func (r *PostgresRepository) MarkIssued(ctx context.Context, id string, assetID uint64, txID string) error {
	query := `
		UPDATE records
		SET verified = true, asset_id = $2, transaction_id = $3
		WHERE id = $1 AND NOT verified
	`

	res, err := r.db.ExecContext(ctx, query, id, int64(assetID), txID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// MarkRevoked is the compare-and-swap closing a revocation.
func (r *PostgresRepository) MarkRevoked(ctx context.Context, id string, txID string) error {
	query := `
		UPDATE records
		SET revoked = true, revoke_transaction_id = $2
		WHERE id = $1 AND verified AND NOT revoked
	`

	res, err := r.db.ExecContext(ctx, query, id, txID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrStateConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
