// Package accounts is the credential store: persistence for registered
// accounts and their password digests.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

// Repository persists accounts. Emails are expected in normalized (lower
// case) form; lookups are exact matches.
//
// Errors: common.ErrorNotFound when a lookup or update finds no row,
// common.ErrorAlreadyExists when an email is taken, otherwise a wrapped
// "db error".
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) (*models.Account, error)
	// UpdatePassword reports whether a row was changed.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
}
