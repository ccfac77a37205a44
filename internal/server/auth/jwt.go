// Package auth implements credential hashing, identity tokens, the
// per-request identity, and authorization guards.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the iss claim written and required by TokenIssuer.
const DefaultIssuer = "dealership"

// tokenPrecision is the resolution of iat and exp. Claims are encoded at
// microsecond precision so decoding and rounding recovers them exactly.
const tokenPrecision = time.Millisecond

func init() {
	jwt.TimePrecision = time.Microsecond
}

// Claims is the identity token payload. It never carries the password digest.
type Claims struct {
	AccountID int64  `json:"account_id"`
	FirstName string `json:"account_firstname"`
	LastName  string `json:"account_lastname"`
	Email     string `json:"account_email"`
	Type      string `json:"account_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 identity tokens with exp = iat + ttl.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(t *TokenIssuer) { t.now = now }
}

func WithIssuer(issuer string) IssuerOption {
	return func(t *TokenIssuer) { t.issuer = issuer }
}

func NewTokenIssuer(secret []byte, ttl time.Duration, opts ...IssuerOption) *TokenIssuer {
	t := &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// TTL is the token lifetime; the identity cookie uses the same value.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the given account.
func (t *TokenIssuer) Issue(a models.AccountSnapshot) (string, error) {
	now := t.now().Truncate(tokenPrecision)

	claims := Claims{
		AccountID: a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Type:      string(a.Type),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and issuer, then expiry with zero
// leeway: a token is expired once now is after iat + ttl, as carried in exp.
// Expired tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*models.AccountSnapshot, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Issuer != t.issuer || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	now := t.now()
	if claims.IssuedAt != nil && claims.IssuedAt.Time.Round(tokenPrecision).After(now) {
		return nil, common.ErrInvalidToken
	}
	if now.After(claims.ExpiresAt.Time.Round(tokenPrecision)) {
		return nil, common.ErrTokenExpired
	}

	accountType, err := models.ParseAccountType(claims.Type)
	if err != nil || claims.AccountID <= 0 || claims.Subject != strconv.FormatInt(claims.AccountID, 10) {
		return nil, common.ErrInvalidToken
	}

	return &models.AccountSnapshot{
		ID:        claims.AccountID,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
		Type:      accountType,
	}, nil
}
