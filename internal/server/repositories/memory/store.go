// Package memory is an in-process implementation of every repository. It
// backs the "memory" DSN for local development and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/models"
)

// Store holds all tables behind one mutex.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	accountSeq  int64
	accounts    map[int64]models.Account
	emailIndex  map[string]int64
	classSeq    int64
	classes     map[int64]models.Classification
	vehicleSeq  int64
	vehicles    map[int64]models.Vehicle
	favoriteSeq int64
	favorites   map[favoriteKey]favoriteRow
}

type favoriteKey struct {
	accountID   int64
	inventoryID int64
}

type favoriteRow struct {
	seq       int64
	createdAt time.Time
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		accounts:   make(map[int64]models.Account),
		emailIndex: make(map[string]int64),
		classes:    make(map[int64]models.Classification),
		vehicles:   make(map[int64]models.Vehicle),
		favorites:  make(map[favoriteKey]favoriteRow),
	}
}

// Accounts implements accounts.Repository.
type Accounts struct{ s *Store }

func (s *Store) Accounts() *Accounts { return &Accounts{s: s} }

func (r *Accounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emailIndex[a.Email]; taken {
		return nil, common.ErrorAlreadyExists
	}
	if a.Type == "" {
		a.Type = models.AccountClient
	}

	r.s.accountSeq++
	a.ID = r.s.accountSeq
	a.CreatedAt = r.s.now()
	r.s.accounts[a.ID] = *a
	r.s.emailIndex[a.Email] = a.ID

	out := *a
	return &out, nil
}

func (r *Accounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emailIndex[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a := r.s.accounts[id]
	return &a, nil
}

func (r *Accounts) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *Accounts) EmailExists(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.emailIndex[email]
	return ok, nil
}

func (r *Accounts) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if owner, taken := r.s.emailIndex[email]; taken && owner != id {
		return nil, common.ErrorAlreadyExists
	}

	delete(r.s.emailIndex, a.Email)
	a.FirstName, a.LastName, a.Email = firstName, lastName, email
	r.s.accounts[id] = a
	r.s.emailIndex[email] = id

	return &a, nil
}

func (r *Accounts) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return false, nil
	}
	a.PasswordHash = passwordHash
	r.s.accounts[id] = a
	return true, nil
}

// Classifications implements classifications.Repository.
type Classifications struct{ s *Store }

func (s *Store) Classifications() *Classifications { return &Classifications{s: s} }

func (r *Classifications) List(ctx context.Context) ([]models.Classification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Classification, 0, len(r.s.classes))
	for _, c := range r.s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Classifications) Get(ctx context.Context, id int64) (*models.Classification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.classes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *Classifications) Create(ctx context.Context, name string) (*models.Classification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.classes {
		if c.Name == name {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.classSeq++
	c := models.Classification{ID: r.s.classSeq, Name: name}
	r.s.classes[c.ID] = c
	return &c, nil
}

// Inventory implements inventory.Repository.
type Inventory struct{ s *Store }

func (s *Store) Inventory() *Inventory { return &Inventory{s: s} }

// withClassification fills the joined name. Caller holds the lock.
func (s *Store) withClassification(v models.Vehicle) models.Vehicle {
	v.ClassificationName = s.classes[v.ClassificationID].Name
	return v
}

func (r *Inventory) ListByClassification(ctx context.Context, classificationID int64) ([]models.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Vehicle, 0)
	for _, v := range r.s.vehicles {
		if v.ClassificationID == classificationID {
			out = append(out, r.s.withClassification(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Inventory) Get(ctx context.Context, id int64) (*models.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	v = r.s.withClassification(v)
	return &v, nil
}

func (r *Inventory) Create(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.classes[v.ClassificationID]; !ok {
		return nil, common.ErrorNotFound
	}
	r.s.vehicleSeq++
	v.ID = r.s.vehicleSeq
	r.s.vehicles[v.ID] = *v
	return v, nil
}

func (r *Inventory) Update(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[v.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	r.s.vehicles[v.ID] = *v
	return v, nil
}

func (r *Inventory) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.vehicles, id)
	for k := range r.s.favorites {
		if k.inventoryID == id {
			delete(r.s.favorites, k)
		}
	}
	return nil
}

func (r *Inventory) UpdateImage(ctx context.Context, id int64, image, thumbnail string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return common.ErrorNotFound
	}
	v.Image, v.Thumbnail = image, thumbnail
	r.s.vehicles[id] = v
	return nil
}

// Favorites implements favorites.Repository.
type Favorites struct{ s *Store }

func (s *Store) Favorites() *Favorites { return &Favorites{s: s} }

func (r *Favorites) Add(ctx context.Context, accountID, inventoryID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[inventoryID]; !ok {
		return common.ErrorNotFound
	}
	k := favoriteKey{accountID: accountID, inventoryID: inventoryID}
	if _, ok := r.s.favorites[k]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.favoriteSeq++
	r.s.favorites[k] = favoriteRow{seq: r.s.favoriteSeq, createdAt: r.s.now()}
	return nil
}

func (r *Favorites) Remove(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := favoriteKey{accountID: accountID, inventoryID: inventoryID}
	if _, ok := r.s.favorites[k]; !ok {
		return false, nil
	}
	delete(r.s.favorites, k)
	return true, nil
}

func (r *Favorites) Exists(ctx context.Context, accountID, inventoryID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.favorites[favoriteKey{accountID: accountID, inventoryID: inventoryID}]
	return ok, nil
}

func (r *Favorites) ListByAccount(ctx context.Context, accountID int64) ([]models.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type saved struct {
		row favoriteRow
		v   models.Vehicle
	}
	var rows []saved
	for k, row := range r.s.favorites {
		if k.accountID != accountID {
			continue
		}
		if v, ok := r.s.vehicles[k.inventoryID]; ok {
			rows = append(rows, saved{row: row, v: r.s.withClassification(v)})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].row.createdAt.Equal(rows[j].row.createdAt) {
			return rows[i].row.createdAt.After(rows[j].row.createdAt)
		}
		return rows[i].row.seq > rows[j].row.seq
	})

	out := make([]models.Vehicle, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.v)
	}
	return out, nil
}
