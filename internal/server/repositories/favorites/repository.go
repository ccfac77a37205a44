// Package favorites persists the saved-vehicle relation between accounts and
// inventory.
package favorites

import (
	"context"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type Repository interface {
	// Add fails with common.ErrorAlreadyExists when the pair is present.
	Add(ctx context.Context, accountID, inventoryID int64) error
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, accountID, inventoryID int64) (bool, error)
	Exists(ctx context.Context, accountID, inventoryID int64) (bool, error)
	// ListByAccount returns saved vehicles, most recently saved first.
	ListByAccount(ctx context.Context, accountID int64) ([]models.Vehicle, error)
}
