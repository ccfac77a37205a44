// Package cli implements the dealership admin tool: one-shot commands that
// act on the store directly, for operations with no web route.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dealership/internal/flagx"
	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server"
	"github.com/dmitrijs2005/dealership/internal/server/config"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/storage"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
)

// ErrUsage is returned for an unknown command or bad command flags.
var ErrUsage = errors.New("usage error")

const usage = `Usage: admin <command> [flags]

Commands:
  create-account -email E -first F -last L -role Employee|Admin
  upload-image   -inv ID -file PATH
`

type accountCreator interface {
	CreatePrivileged(ctx context.Context, in validation.Registration, role models.AccountType) (*models.AccountSnapshot, error)
}

type vehicleImages interface {
	Vehicle(ctx context.Context, id int64) (*models.Vehicle, error)
	SetVehicleImage(ctx context.Context, id int64, url string) error
}

type presigner interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*storage.Upload, error)
}

type App struct {
	accounts  accountCreator
	inventory vehicleImages
	images    presigner
	http      *http.Client
	out       io.Writer
	close     func() error
}

// NewApp opens the backend described by cfg. Logs go to logOut, command
// output to out.
func NewApp(ctx context.Context, cfg *config.Config, out, logOut io.Writer) (*App, error) {
	logger := logging.NewLogger(cfg.LogLevel, "text", logOut)

	b, err := server.NewBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		accounts:  b.Accounts,
		inventory: b.Inventory,
		images:    b.Images,
		http:      &http.Client{Timeout: 60 * time.Second},
		out:       out,
		close:     b.Close,
	}, nil
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Run executes one command. args excludes the command name and may still
// carry server config flags; unknown flags are filtered out per command.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-account":
		return a.createAccount(ctx, args)
	case "upload-image":
		return a.uploadImage(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

func (a *App) parse(fs *flag.FlagSet, args []string, names ...string) error {
	fs.SetOutput(io.Discard)
	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}
	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}
