package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/dealership/internal/netx"
)

// uploadImage pushes a local file to object storage through a presigned URL
// and points the vehicle's image and thumbnail at the stored object.
func (a *App) uploadImage(ctx context.Context, args []string) error {
	var (
		invID int64
		path  string
	)

	fs := flag.NewFlagSet("upload-image", flag.ContinueOnError)
	fs.Int64Var(&invID, "inv", 0, "vehicle id")
	fs.StringVar(&path, "file", "", "image file")
	if err := a.parse(fs, args, "inv", "file"); err != nil {
		return err
	}
	if invID <= 0 || path == "" {
		return fmt.Errorf("%w: -inv and -file are required", ErrUsage)
	}

	if _, err := a.inventory.Vehicle(ctx, invID); err != nil {
		return fmt.Errorf("vehicle %d: %w", invID, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	contentType := http.DetectContentType(data)

	up, err := a.images.PresignUpload(ctx, filepath.Base(path), contentType)
	if err != nil {
		return fmt.Errorf("presign: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, a.http, up.URL, data, contentType); err != nil {
		return err
	}

	if err := a.inventory.SetVehicleImage(ctx, invID, up.PublicURL); err != nil {
		return fmt.Errorf("record image: %w", err)
	}

	fmt.Fprintf(a.out, "Uploaded %s for vehicle %d\n", up.PublicURL, invID)
	return nil
}
