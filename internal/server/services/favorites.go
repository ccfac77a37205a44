package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/repomanager"
)

// ErrAlreadyFavorite is returned when a vehicle is saved twice.
var ErrAlreadyFavorite = errors.New("vehicle already saved")

// FavoriteService manages an account's saved vehicles. Callers pass the
// authenticated account id; ownership is implied by construction.
type FavoriteService struct {
	db          dbx.DBTX
	tx          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewFavoriteService(db dbx.DBTX, tx dbx.TxRunner, m repomanager.RepositoryManager, logger logging.Logger) *FavoriteService {
	return &FavoriteService{db: db, tx: tx, repomanager: m, logger: logger.With("module", "favorites")}
}

// Add saves inventoryID for accountID. Unknown vehicles yield
// common.ErrorNotFound.
func (s *FavoriteService) Add(ctx context.Context, accountID, inventoryID int64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Inventory(tx).Get(ctx, inventoryID); err != nil {
			return err
		}

		favs := s.repomanager.Favorites(tx)
		exists, err := favs.Exists(ctx, accountID, inventoryID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyFavorite
		}

		if err := favs.Add(ctx, accountID, inventoryID); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return ErrAlreadyFavorite
			}
			return err
		}
		return nil
	})
}

// Remove reports whether the vehicle was saved before.
func (s *FavoriteService) Remove(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	return s.repomanager.Favorites(s.db).Remove(ctx, accountID, inventoryID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	return s.repomanager.Favorites(s.db).Exists(ctx, accountID, inventoryID)
}

// List returns saved vehicles, newest first.
func (s *FavoriteService) List(ctx context.Context, accountID int64) ([]models.Vehicle, error) {
	return s.repomanager.Favorites(s.db).ListByAccount(ctx, accountID)
}
