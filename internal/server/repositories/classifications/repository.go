// Package classifications persists vehicle categories used for navigation.
package classifications

import (
	"context"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type Repository interface {
	// List returns all classifications ordered by name.
	List(ctx context.Context) ([]models.Classification, error)
	Get(ctx context.Context, id int64) (*models.Classification, error)
	Create(ctx context.Context, name string) (*models.Classification, error)
}
