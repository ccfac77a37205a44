package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server"
	"github.com/dmitrijs2005/dealership/internal/server/config"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/storage"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Sup3r$ecretPw"

type fakePresigner struct {
	url       string
	publicURL string
	err       error

	gotName, gotType string
}

func (f *fakePresigner) PresignUpload(ctx context.Context, filename, contentType string) (*storage.Upload, error) {
	f.gotName, f.gotType = filename, contentType
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Upload{Key: "vehicles/x.png", URL: f.url, PublicURL: f.publicURL}, nil
}

type harness struct {
	app     *App
	backend *server.Backend
	out     *bytes.Buffer
	images  *fakePresigner
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = config.MemoryDSN

	b, err := server.NewBackend(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	h := &harness{backend: b, out: &bytes.Buffer{}, images: &fakePresigner{}}
	h.app = &App{
		accounts:  b.Accounts,
		inventory: b.Inventory,
		images:    h.images,
		http:      http.DefaultClient,
		out:       h.out,
		close:     b.Close,
	}
	t.Cleanup(func() { _ = h.app.Close() })
	return h
}

func (h *harness) seedVehicle(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	c, err := h.backend.Inventory.AddClassification(ctx, "Sport")
	require.NoError(t, err)
	v, err := h.backend.Inventory.AddVehicle(ctx, validation.VehicleForm{
		ClassificationID: strconv.FormatInt(c.ID, 10),
		Make:             "DMC",
		Model:            "DeLorean",
		Year:             "1981",
		Description:      "Stainless steel body.",
		Image:            "/images/vehicles/no-image.png",
		Thumbnail:        "/images/vehicles/no-image-tn.png",
		Price:            "65000",
		Miles:            "12000",
		Color:            "Silver",
	})
	require.NoError(t, err)
	return v.ID
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t)
	err := h.app.Run(context.Background(), "frobnicate", nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.out.String(), "Usage: admin")
}

func TestRun_Help(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Run(context.Background(), "help", nil))
	assert.Contains(t, h.out.String(), "create-account")
}

func TestCreateAccount(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, goodPassword, goodPassword)
	ctx := context.Background()

	// Server config flags mixed in are ignored.
	err := h.app.Run(ctx, "create-account", []string{
		"-d", "memory", "-email", "Boss@Example.com", "-first", "Grace", "-last", "Hopper", "-role", "Admin",
	})
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Created Admin account")

	out, err := h.backend.Accounts.Login(ctx, "boss@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, models.AccountAdmin, out.Account.Type)
}

func TestCreateAccount_DefaultsToEmployee(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, goodPassword, goodPassword)

	err := h.app.Run(context.Background(), "create-account", []string{
		"-email", "staff@example.com", "-first", "Sam", "-last", "Staff",
	})
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Created Employee account")
}

func TestCreateAccount_BadRole(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t)

	err := h.app.Run(context.Background(), "create-account", []string{
		"-email", "x@example.com", "-first", "X", "-last", "Y", "-role", "Owner",
	})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestCreateAccount_ValidationErrorsPrinted(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, "short", "short")

	err := h.app.Run(context.Background(), "create-account", []string{
		"-email", "x@example.com", "-first", "X", "-last", "Y",
	})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.NotEmpty(t, verrs[validation.FieldPassword])
	for _, m := range verrs.Messages() {
		assert.Contains(t, h.out.String(), m)
	}
}

func TestCreateAccount_PasswordMismatch(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, goodPassword, "different")

	err := h.app.Run(context.Background(), "create-account", []string{
		"-email", "x@example.com", "-first", "X", "-last", "Y",
	})
	assert.ErrorIs(t, err, errPasswordMismatch)
}

func writeImage(t *testing.T) string {
	t.Helper()
	// PNG signature plus padding is enough for content sniffing.
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	path := filepath.Join(t.TempDir(), "delorean.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.seedVehicle(t)

	var (
		mu      sync.Mutex
		gotBody []byte
		gotType string
		method  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h.images.url = srv.URL + "/vehicles/x.png?X-Amz-Signature=abc"
	h.images.publicURL = "http://minio.local/vehicles/x.png"

	path := writeImage(t)
	require.NoError(t, h.app.Run(ctx, "upload-image", []string{"-inv", strconv.FormatInt(id, 10), "-file", path}))

	mu.Lock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "image/png", gotType)
	assert.Len(t, gotBody, 40)
	mu.Unlock()

	assert.Equal(t, "delorean.png", h.images.gotName)
	assert.Equal(t, "image/png", h.images.gotType)

	v, err := h.backend.Inventory.Vehicle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "http://minio.local/vehicles/x.png", v.Image)
	assert.Equal(t, "http://minio.local/vehicles/x.png", v.Thumbnail)
}

func TestUploadImage_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing flags", func(t *testing.T) {
		h := newHarness(t)
		assert.ErrorIs(t, h.app.Run(ctx, "upload-image", []string{"-inv", "1"}), ErrUsage)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		h := newHarness(t)
		err := h.app.Run(ctx, "upload-image", []string{"-inv", "999", "-file", writeImage(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vehicle 999")
	})

	t.Run("storage disabled", func(t *testing.T) {
		h := newHarness(t)
		id := h.seedVehicle(t)
		h.images.err = storage.ErrDisabled
		err := h.app.Run(ctx, "upload-image", []string{"-inv", strconv.FormatInt(id, 10), "-file", writeImage(t)})
		assert.ErrorIs(t, err, storage.ErrDisabled)
	})

	t.Run("upload rejected", func(t *testing.T) {
		h := newHarness(t)
		id := h.seedVehicle(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
		}))
		defer srv.Close()
		h.images.url = srv.URL + "/vehicles/x.png"
		h.images.publicURL = "http://minio.local/vehicles/x.png"

		err := h.app.Run(ctx, "upload-image", []string{"-inv", strconv.FormatInt(id, 10), "-file", writeImage(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SignatureDoesNotMatch")

		v, err := h.backend.Inventory.Vehicle(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/images/vehicles/no-image.png", v.Image)
	})
}
