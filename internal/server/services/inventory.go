package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const navCacheKey = "nav"

// CacheRecorder observes cache lookups. *metrics.Metrics implements it.
type CacheRecorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)  {}
func (noopRecorder) CacheMiss(string) {}

// InventoryService manages classifications and vehicles. The classification
// list feeds the navigation menu on every page and is cached.
type InventoryService struct {
	db          dbx.DBTX
	tx          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	nav         *lru.LRU[string, []models.Classification]
	recorder    CacheRecorder
	logger      logging.Logger
}

func NewInventoryService(db dbx.DBTX, tx dbx.TxRunner, m repomanager.RepositoryManager,
	navTTL time.Duration, recorder CacheRecorder, logger logging.Logger) *InventoryService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &InventoryService{
		db:          db,
		tx:          tx,
		repomanager: m,
		nav:         lru.NewLRU[string, []models.Classification](1, nil, navTTL),
		recorder:    recorder,
		logger:      logger.With("module", "inventory"),
	}
}

// Classifications returns all classifications ordered by name.
func (s *InventoryService) Classifications(ctx context.Context) ([]models.Classification, error) {
	if list, ok := s.nav.Get(navCacheKey); ok {
		s.recorder.CacheHit(navCacheKey)
		return list, nil
	}
	s.recorder.CacheMiss(navCacheKey)

	list, err := s.repomanager.Classifications(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	s.nav.Add(navCacheKey, list)
	return list, nil
}

func (s *InventoryService) Classification(ctx context.Context, id int64) (*models.Classification, error) {
	return s.repomanager.Classifications(s.db).Get(ctx, id)
}

// AddClassification validates and stores a new classification, then drops
// the cached menu.
func (s *InventoryService) AddClassification(ctx context.Context, name string) (*models.Classification, error) {
	name, errs := validation.ClassificationName(name)
	if !errs.Empty() {
		return nil, errs
	}

	c, err := s.repomanager.Classifications(s.db).Create(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, validation.Field(validation.FieldClassification, validation.MsgClassExists)
		}
		return nil, fmt.Errorf("create classification: %w", err)
	}

	s.nav.Remove(navCacheKey)
	s.logger.Info(ctx, "classification added", "classification_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *InventoryService) VehiclesByClassification(ctx context.Context, classificationID int64) ([]models.Vehicle, error) {
	return s.repomanager.Inventory(s.db).ListByClassification(ctx, classificationID)
}

func (s *InventoryService) Vehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	return s.repomanager.Inventory(s.db).Get(ctx, id)
}

// AddVehicle parses the form and stores the vehicle if its classification
// exists.
func (s *InventoryService) AddVehicle(ctx context.Context, form validation.VehicleForm) (*models.Vehicle, error) {
	v, errs := form.Parse(false)
	if !errs.Empty() {
		return nil, errs
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkClassification(ctx, tx, v.ClassificationID); err != nil {
			return err
		}
		var err error
		v, err = s.repomanager.Inventory(tx).Create(ctx, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "vehicle added", "inv_id", v.ID)
	return v, nil
}

func (s *InventoryService) UpdateVehicle(ctx context.Context, form validation.VehicleForm) (*models.Vehicle, error) {
	v, errs := form.Parse(true)
	if !errs.Empty() {
		return nil, errs
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkClassification(ctx, tx, v.ClassificationID); err != nil {
			return err
		}
		var err error
		v, err = s.repomanager.Inventory(tx).Update(ctx, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "vehicle updated", "inv_id", v.ID)
	return v, nil
}

func (s *InventoryService) checkClassification(ctx context.Context, tx dbx.DBTX, id int64) error {
	_, err := s.repomanager.Classifications(tx).Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return validation.Field(validation.FieldClassID, "Please choose a classification.")
	}
	return err
}

func (s *InventoryService) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.repomanager.Inventory(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "vehicle deleted", "inv_id", id)
	return nil
}

// SetVehicleImage points both image and thumbnail at an uploaded object.
func (s *InventoryService) SetVehicleImage(ctx context.Context, id int64, url string) error {
	if err := s.repomanager.Inventory(s.db).UpdateImage(ctx, id, url, url); err != nil {
		return err
	}
	s.logger.Info(ctx, "vehicle image set", "inv_id", id)
	return nil
}
