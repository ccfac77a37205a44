// Package models holds the server-side domain types shared by repositories,
// services, and handlers.
package models

import (
	"fmt"
	"time"
)

// AccountType is the role attached to an account.
type AccountType string

const (
	AccountClient   AccountType = "Client"
	AccountEmployee AccountType = "Employee"
	AccountAdmin    AccountType = "Admin"
)

// ParseAccountType accepts the canonical role names, case-sensitively.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountClient, AccountEmployee, AccountAdmin:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Account is a registered user. PasswordHash never leaves the service layer.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Type         AccountType
	CreatedAt    time.Time
}

// Snapshot returns the token-safe view of the account.
func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Type:      a.Type,
	}
}

// AccountSnapshot is the subset of Account that may be embedded in an
// identity token or rendered. It carries no secrets.
type AccountSnapshot struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Type      AccountType
}
