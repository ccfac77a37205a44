// Package inventory persists vehicles offered by the dealership.
package inventory

import (
	"context"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type Repository interface {
	// ListByClassification returns vehicles of one classification ordered by id.
	ListByClassification(ctx context.Context, classificationID int64) ([]models.Vehicle, error)
	Get(ctx context.Context, id int64) (*models.Vehicle, error)
	Create(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error)
	Update(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	UpdateImage(ctx context.Context, id int64, image, thumbnail string) error
}
