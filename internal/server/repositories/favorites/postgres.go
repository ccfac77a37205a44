package favorites

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/inventory"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, accountID, inventoryID int64) error {
	query := `INSERT INTO favorites (account_id, inv_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, accountID, inventoryID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	query := `DELETE FROM favorites WHERE account_id = $1 AND inv_id = $2`

	res, err := r.db.ExecContext(ctx, query, accountID, inventoryID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE account_id = $1 AND inv_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, accountID, inventoryID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.Vehicle, error) {
	query := `SELECT ` + inventory.VehicleColumns + `
	 FROM favorites f
	 JOIN inventory i ON i.inv_id = f.inv_id
	 JOIN classification c ON c.classification_id = i.classification_id
	 WHERE f.account_id = $1
	 ORDER BY f.created_at DESC, f.favorite_id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inventory.ScanVehicles(rows)
}
