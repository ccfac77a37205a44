// Package repomanager vends repository implementations bound to a DBTX, so
// services can run the same code against a pool or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/classifications"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/inventory"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Classifications(db dbx.DBTX) classifications.Repository
	Inventory(db dbx.DBTX) inventory.Repository
	Favorites(db dbx.DBTX) favorites.Repository
}
