package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
)

func (a *App) createAccount(ctx context.Context, args []string) error {
	var (
		email, first, last string
		role               = string(models.AccountEmployee)
	)

	fs := flag.NewFlagSet("create-account", flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&first, "first", "", "first name")
	fs.StringVar(&last, "last", "", "last name")
	fs.StringVar(&role, "role", role, "Employee or Admin")
	if err := a.parse(fs, args, "email", "first", "last", "role"); err != nil {
		return err
	}

	accountType, err := models.ParseAccountType(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(pw)

	snap, err := a.accounts.CreatePrivileged(ctx, validation.Registration{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  string(pw),
	}, accountType)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for _, m := range verrs.Messages() {
				fmt.Fprintln(a.out, m)
			}
		}
		return err
	}

	fmt.Fprintf(a.out, "Created %s account %d for %s\n", snap.Type, snap.ID, snap.Email)
	return nil
}
