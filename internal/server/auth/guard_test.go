package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func ident(id int64, role models.AccountType) Identity {
	return Authenticated(models.AccountSnapshot{ID: id, Type: role})
}

func TestRequireOwner(t *testing.T) {
	for _, role := range []models.AccountType{models.AccountClient, models.AccountEmployee, models.AccountAdmin} {
		t.Run(string(role), func(t *testing.T) {
			assert.Equal(t, Decision{Reason: DenyNotOwner}, RequireOwner(ident(5, role), 7))
			assert.Equal(t, Decision{Allowed: true}, RequireOwner(ident(5, role), 5))
		})
	}

	assert.Equal(t, Decision{Reason: DenyAnonymous}, RequireOwner(Anonymous(), 0))
	assert.Equal(t, Decision{Reason: DenyAnonymous}, RequireOwner(Identity{}, 5))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want Decision
	}{
		{"anonymous", Anonymous(), Decision{Reason: DenyAnonymous}},
		{"client", ident(1, models.AccountClient), Decision{Reason: DenyRole}},
		{"employee", ident(2, models.AccountEmployee), Decision{Allowed: true}},
		{"admin", ident(3, models.AccountAdmin), Decision{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequireRole(tt.id, InventoryManagers...))
		})
	}

	assert.False(t, RequireRole(ident(3, models.AccountAdmin)).Allowed, "empty allow-list denies")
}

func TestRequireLogin(t *testing.T) {
	assert.True(t, RequireLogin(ident(1, models.AccountClient)).Allowed)
	assert.Equal(t, DenyAnonymous, RequireLogin(Anonymous()).Reason)
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, RequireOwner(ident(5, models.AccountClient), 5).Err())
	assert.ErrorIs(t, RequireOwner(Anonymous(), 5).Err(), common.ErrorUnauthorized)

	err := RequireOwner(ident(5, models.AccountAdmin), 7).Err()
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Contains(t, err.Error(), "not_owner")

	assert.ErrorIs(t, RequireRole(ident(1, models.AccountClient), InventoryManagers...).Err(), common.ErrorForbidden)
}

func TestDenyReason_String(t *testing.T) {
	assert.Equal(t, "none", DenyNone.String())
	assert.Equal(t, "anonymous", DenyAnonymous.String())
	assert.Equal(t, "not_owner", DenyNotOwner.String())
	assert.Equal(t, "role", DenyRole.String())
	assert.Equal(t, "unknown", DenyReason(42).String())
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, FromContext(ctx).IsAuthenticated())

	id := ident(9, models.AccountAdmin)
	got := FromContext(WithIdentity(ctx, id))
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, int64(9), got.AccountID())
	assert.Equal(t, models.AccountAdmin, got.Role())
	assert.Equal(t, int64(0), Anonymous().AccountID())
}
