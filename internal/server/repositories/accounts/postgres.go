package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/dbx"
	"github.com/dmitrijs2005/dealership/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT account_id, account_firstname, account_lastname, account_email,
		account_password, account_type, created_at
	 FROM account
	 `

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO account (account_firstname, account_lastname, account_email, account_password, account_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING account_id, created_at
		 `

	if a.Type == "" {
		a.Type = models.AccountClient
	}

	err := r.db.QueryRowContext(ctx, query,
		a.FirstName, a.LastName, a.Email, a.PasswordHash, string(a.Type)).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, selectAccount+`WHERE account_email = $1`, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, selectAccount+`WHERE account_id = $1`, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var accountType string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &accountType, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Type = models.AccountType(accountType)
	return a, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM account WHERE account_email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) (*models.Account, error) {
	query :=
		`UPDATE account
		 SET account_firstname = $1, account_lastname = $2, account_email = $3
		 WHERE account_id = $4
		 RETURNING account_id, account_firstname, account_lastname, account_email,
		 	account_password, account_type, created_at
		 `

	a := &models.Account{}
	var accountType string

	err := r.db.QueryRowContext(ctx, query, firstName, lastName, email, id).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &accountType, &a.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Type = models.AccountType(accountType)
	return a, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	query := `UPDATE account SET account_password = $1 WHERE account_id = $2`

	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
