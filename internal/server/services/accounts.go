// Package services contains server-side business logic. AccountService owns
// registration, the login state machine, and profile changes.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
)

// MsgLoginRejected is shown for every rejected login, whatever the reason.
const MsgLoginRejected = "Please check your credentials and try again."

// ErrPasswordNotUpdated means the store accepted the request but changed no row.
var ErrPasswordNotUpdated = errors.New("password not updated")

type LoginState int

const (
	AwaitingCredentials LoginState = iota
	Verifying
	Authenticated
	Rejected
)

func (s LoginState) String() string {
	switch s {
	case AwaitingCredentials:
		return "awaiting_credentials"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectNotFound
	RejectBadPassword
)

func (r RejectReason) String() string {
	switch r {
	case RejectNotFound:
		return "not_found"
	case RejectBadPassword:
		return "bad_password"
	default:
		return "none"
	}
}

// LoginOutcome is the terminal state of one login attempt. Token and Account
// are set only when State is Authenticated.
type LoginOutcome struct {
	State   LoginState
	Reason  RejectReason
	Account models.AccountSnapshot
	Token   string
}

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// TokenIssuer is satisfied by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(a models.AccountSnapshot) (string, error)
}

type AccountService struct {
	db          dbx.DBTX
	tx          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	logger      logging.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAccountService(db dbx.DBTX, tx dbx.TxRunner, m repomanager.RepositoryManager,
	hasher PasswordHasher, tokens TokenIssuer, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		tx:          tx,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "accounts"),
	}
}

// Register creates a Client account. Invalid input and a taken email are
// returned as validation.Errors.
func (s *AccountService) Register(ctx context.Context, in validation.Registration) (*models.AccountSnapshot, error) {
	return s.create(ctx, in, models.AccountClient)
}

// CreatePrivileged creates an account with an explicit role. There is no web
// path to it; the admin CLI uses it.
func (s *AccountService) CreatePrivileged(ctx context.Context, in validation.Registration, role models.AccountType) (*models.AccountSnapshot, error) {
	if _, err := models.ParseAccountType(string(role)); err != nil {
		return nil, validation.Field("account_type", err.Error())
	}
	return s.create(ctx, in, role)
}

func (s *AccountService) create(ctx context.Context, in validation.Registration, role models.AccountType) (*models.AccountSnapshot, error) {
	in.Normalize()
	if errs := in.Validate(); !errs.Empty() {
		return nil, errs
	}

	repo := s.repomanager.Accounts(s.db)

	exists, err := repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, validation.Field(validation.FieldEmail, validation.MsgEmailExists)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	a, err := repo.Create(ctx, &models.Account{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: digest,
		Type:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, validation.Field(validation.FieldEmail, validation.MsgEmailExists)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info(ctx, "account created", "account_id", a.ID, "account_type", string(a.Type))
	snap := a.Snapshot()
	return &snap, nil
}

// Login runs AwaitingCredentials -> Verifying -> Authenticated | Rejected.
// Store and crypto failures are returned as errors and never folded into a
// rejection.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	out := &LoginOutcome{State: AwaitingCredentials}

	email = validation.NormalizeEmail(email)
	out.State = Verifying

	a, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("find account: %w", err)
		}
		// Unknown emails pay for one comparison, like a bad password.
		if d := s.dummy(ctx); d != "" {
			_, _ = s.hasher.Verify(password, d)
		}
		out.State, out.Reason = Rejected, RejectNotFound
		return out, nil
	}

	ok, err := s.hasher.Verify(password, a.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		out.State, out.Reason = Rejected, RejectBadPassword
		return out, nil
	}

	snap := a.Snapshot()
	token, err := s.tokens.Issue(snap)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	out.State, out.Account, out.Token = Authenticated, snap, token
	return out, nil
}

func (s *AccountService) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warn(ctx, "dummy digest unavailable, unknown-email logins skip the timing compare", "error", err)
			return
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (*models.AccountSnapshot, error) {
	a, err := s.repomanager.Accounts(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := a.Snapshot()
	return &snap, nil
}

// UpdateProfile changes names and email, then re-issues the identity token
// with the new display fields. Email uniqueness is checked only when it
// changes.
func (s *AccountService) UpdateProfile(ctx context.Context, in validation.Profile) (*models.AccountSnapshot, string, error) {
	in.Normalize()
	if errs := in.Validate(); !errs.Empty() {
		return nil, "", errs
	}

	var updated *models.Account
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		current, err := repo.FindByID(ctx, in.AccountID)
		if err != nil {
			return err
		}

		if current.Email != in.Email {
			exists, err := repo.EmailExists(ctx, in.Email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if exists {
				return validation.Field(validation.FieldEmail, validation.MsgEmailTaken)
			}
		}

		updated, err = repo.UpdateProfile(ctx, in.AccountID, in.FirstName, in.LastName, in.Email)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return validation.Field(validation.FieldEmail, validation.MsgEmailTaken)
		}
		return err
	})
	if err != nil {
		return nil, "", err
	}

	snap := updated.Snapshot()
	token, err := s.tokens.Issue(snap)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info(ctx, "account profile updated", "account_id", snap.ID)
	return &snap, token, nil
}

// UpdatePassword stores a new digest. A hashing failure is returned as a
// crypto error; a store that changes nothing yields ErrPasswordNotUpdated.
func (s *AccountService) UpdatePassword(ctx context.Context, in validation.PasswordChange) error {
	if errs := in.Validate(); !errs.Empty() {
		return errs
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	ok, err := s.repomanager.Accounts(s.db).UpdatePassword(ctx, in.AccountID, digest)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !ok {
		return ErrPasswordNotUpdated
	}

	s.logger.Info(ctx, "account password updated", "account_id", in.AccountID)
	return nil
}

var _ PasswordHasher = (*auth.PasswordHasher)(nil)
var _ TokenIssuer = (*auth.TokenIssuer)(nil)
