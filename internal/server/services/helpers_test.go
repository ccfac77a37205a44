package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
)

const goodPassword = "Sup3r$ecretPw"

var testSecret = []byte("test-secret-test-secret-test-secret")

type env struct {
	manager   *repomanager.InMemoryRepositoryManager
	tokens    *auth.TokenIssuer
	accounts  *AccountService
	inventory *InventoryService
	favorites *FavoriteService
	recorder  *countingRecorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	tx := &dbx.LockRunner{}
	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	rec := &countingRecorder{}
	log := logging.Nop()

	return &env{
		manager:   m,
		tokens:    tokens,
		accounts:  NewAccountService(nil, tx, m, auth.NewPasswordHasher(auth.MinBcryptCost), tokens, log),
		inventory: NewInventoryService(nil, tx, m, time.Minute, rec, log),
		favorites: NewFavoriteService(nil, tx, m, log),
		recorder:  rec,
	}
}

func registration(email string) validation.Registration {
	return validation.Registration{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: goodPassword}
}

type countingRecorder struct{ hits, misses int }

func (c *countingRecorder) CacheHit(string)  { c.hits++ }
func (c *countingRecorder) CacheMiss(string) { c.misses++ }

// fakeRepoManager overrides Accounts and panics on anything else.
type fakeRepoManager struct {
	repomanager.RepositoryManager
	accounts accounts.Repository
}

func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return f.accounts }

// fakeAccountsRepo fails every call with err unless a field overrides it.
type fakeAccountsRepo struct {
	err         error
	account     *models.Account
	updateOK    bool
	emailExists bool
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = 1
	return a, nil
}

func (f *fakeAccountsRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.account != nil {
		return f.account, nil
	}
	return nil, f.err
}

func (f *fakeAccountsRepo) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	if f.account != nil {
		return f.account, nil
	}
	return nil, f.err
}

func (f *fakeAccountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emailExists, nil
}

func (f *fakeAccountsRepo) UpdateProfile(ctx context.Context, id int64, first, last, email string) (*models.Account, error) {
	return nil, f.err
}

func (f *fakeAccountsRepo) UpdatePassword(ctx context.Context, id int64, hash string) (bool, error) {
	return f.updateOK, f.err
}

// failingHasher returns err from Hash and Verify.
type failingHasher struct{ err error }

func (h failingHasher) Hash(string) (string, error)         { return "", h.err }
func (h failingHasher) Verify(string, string) (bool, error) { return false, h.err }

var errStore = errors.New("connection reset")

// warnCounter counts Warn calls and discards everything else.
type warnCounter struct {
	mu    sync.Mutex
	warns []string
}

func (w *warnCounter) Debug(context.Context, string, ...any) {}
func (w *warnCounter) Info(context.Context, string, ...any)  {}
func (w *warnCounter) Error(context.Context, string, ...any) {}
func (w *warnCounter) With(...any) logging.Logger            { return w }

func (w *warnCounter) Warn(_ context.Context, msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}
