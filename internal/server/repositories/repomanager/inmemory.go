package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/classifications"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/inventory"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/memory"
)

// InMemoryRepositoryManager ignores the DBTX argument; every call returns a
// view over the same memory.Store. Pair it with dbx.LockRunner.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.store.Accounts()
}

func (m *InMemoryRepositoryManager) Classifications(dbx.DBTX) classifications.Repository {
	return m.store.Classifications()
}

func (m *InMemoryRepositoryManager) Inventory(dbx.DBTX) inventory.Repository {
	return m.store.Inventory()
}

func (m *InMemoryRepositoryManager) Favorites(dbx.DBTX) favorites.Repository {
	return m.store.Favorites()
}
