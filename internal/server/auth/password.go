package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dealership/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor the hasher will use.
const MinBcryptCost = 10

// PasswordHasher produces and checks bcrypt digests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher raises cost to MinBcryptCost when lower.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns a salted digest of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash: %v", common.ErrorCrypto, err)
	}
	return string(digest), nil
}

// Verify compares plaintext to digest in constant time. A mismatch is
// (false, nil); a digest that cannot be evaluated is an ErrorCrypto.
func (h *PasswordHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: verify: %v", common.ErrorCrypto, err)
	}
}
