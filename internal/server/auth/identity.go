package auth

import (
	"context"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

// Identity is who the current request acts as. The zero value is Anonymous.
type Identity struct {
	authenticated bool
	account       models.AccountSnapshot
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(a models.AccountSnapshot) Identity {
	return Identity{authenticated: true, account: a}
}

func (i Identity) IsAuthenticated() bool { return i.authenticated }

// AccountID is 0 for Anonymous.
func (i Identity) AccountID() int64 { return i.account.ID }

func (i Identity) Role() models.AccountType { return i.account.Type }

func (i Identity) Account() models.AccountSnapshot { return i.account }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns Anonymous when no identity was attached.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
