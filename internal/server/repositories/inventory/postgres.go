package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// VehicleColumns is the select list understood by ScanVehicle; it expects
// inventory aliased as i and classification as c.
const VehicleColumns = `i.inv_id, i.classification_id, c.classification_name, i.inv_make, i.inv_model,
	i.inv_year, i.inv_description, i.inv_image, i.inv_thumbnail, i.inv_price, i.inv_miles, i.inv_color`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanVehicle reads one row selected with VehicleColumns.
func ScanVehicle(row RowScanner) (models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.ClassificationID, &v.ClassificationName, &v.Make, &v.Model,
		&v.Year, &v.Description, &v.Image, &v.Thumbnail, &v.Price, &v.Miles, &v.Color)
	return v, err
}

// ScanVehicles drains rows into a non-nil slice.
func ScanVehicles(rows *sql.Rows) ([]models.Vehicle, error) {
	defer rows.Close()

	result := make([]models.Vehicle, 0)
	for rows.Next() {
		v, err := ScanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByClassification(ctx context.Context, classificationID int64) ([]models.Vehicle, error) {
	query := `SELECT ` + VehicleColumns + `
	 FROM inventory i JOIN classification c ON c.classification_id = i.classification_id
	 WHERE i.classification_id = $1
	 ORDER BY i.inv_id`

	rows, err := r.db.QueryContext(ctx, query, classificationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ScanVehicles(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := `SELECT ` + VehicleColumns + `
	 FROM inventory i JOIN classification c ON c.classification_id = i.classification_id
	 WHERE i.inv_id = $1`

	v, err := ScanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	query :=
		`INSERT INTO inventory (classification_id, inv_make, inv_model, inv_year, inv_description,
		 	inv_image, inv_thumbnail, inv_price, inv_miles, inv_color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING inv_id
		 `

	err := r.db.QueryRowContext(ctx, query,
		v.ClassificationID, v.Make, v.Model, v.Year, v.Description,
		v.Image, v.Thumbnail, v.Price, v.Miles, v.Color).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Update(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	query :=
		`UPDATE inventory
		 SET classification_id = $1, inv_make = $2, inv_model = $3, inv_year = $4, inv_description = $5,
		 	inv_image = $6, inv_thumbnail = $7, inv_price = $8, inv_miles = $9, inv_color = $10
		 WHERE inv_id = $11
		 `

	res, err := r.db.ExecContext(ctx, query,
		v.ClassificationID, v.Make, v.Model, v.Year, v.Description,
		v.Image, v.Thumbnail, v.Price, v.Miles, v.Color, v.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE inv_id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) UpdateImage(ctx context.Context, id int64, image, thumbnail string) error {
	query := `UPDATE inventory SET inv_image = $1, inv_thumbnail = $2 WHERE inv_id = $3`

	res, err := r.db.ExecContext(ctx, query, image, thumbnail, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
