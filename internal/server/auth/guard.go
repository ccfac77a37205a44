package auth

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyAnonymous
	DenyNotOwner
	DenyRole
)

func (r DenyReason) String() string {
	switch r {
	case DenyNone:
		return "none"
	case DenyAnonymous:
		return "anonymous"
	case DenyNotOwner:
		return "not_owner"
	case DenyRole:
		return "role"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err maps a denial onto common.ErrorUnauthorized (no identity) or
// common.ErrorForbidden (identity lacks the right). Allowed decisions give nil.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == DenyAnonymous:
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("%w: %s", common.ErrorForbidden, d.Reason)
	}
}

var allow = Decision{Allowed: true}

func deny(r DenyReason) Decision { return Decision{Reason: r} }

// InventoryManagers may create, edit and delete inventory.
var InventoryManagers = []models.AccountType{models.AccountEmployee, models.AccountAdmin}

// RequireOwner allows only the authenticated owner of ownerID. Role does not
// matter: an Admin editing someone else's account is denied.
func RequireOwner(id Identity, ownerID int64) Decision {
	if !id.IsAuthenticated() {
		return deny(DenyAnonymous)
	}
	if id.AccountID() != ownerID {
		return deny(DenyNotOwner)
	}
	return allow
}

// RequireRole allows authenticated identities whose role is in allowed.
func RequireRole(id Identity, allowed ...models.AccountType) Decision {
	if !id.IsAuthenticated() {
		return deny(DenyAnonymous)
	}
	if !slices.Contains(allowed, id.Role()) {
		return deny(DenyRole)
	}
	return allow
}

// RequireLogin allows any authenticated identity.
func RequireLogin(id Identity) Decision {
	if !id.IsAuthenticated() {
		return deny(DenyAnonymous)
	}
	return allow
}
