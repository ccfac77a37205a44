// Package web is the server-rendered HTTP front end: routing, identity
// cookies, flash notices, and page handlers.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/config"
	"github.com/dmitrijs2005/dealership/internal/server/metrics"
	"github.com/dmitrijs2005/dealership/internal/server/services"
	"github.com/dmitrijs2005/dealership/internal/server/storage"
	"github.com/gorilla/mux"
)

// Deps are the collaborators a Server needs. Images and Health may be nil.
type Deps struct {
	Accounts  *services.AccountService
	Inventory *services.InventoryService
	Favorites *services.FavoriteService
	Tokens    *auth.TokenIssuer
	Images    *storage.ImageStore
	Metrics   *metrics.Metrics
	Health    func(ctx context.Context) error
}

type Server struct {
	address         string
	cookieName      string
	secureCookies   bool
	shutdownTimeout time.Duration

	accounts  *services.AccountService
	inventory *services.InventoryService
	favorites *services.FavoriteService
	tokens    *auth.TokenIssuer
	images    *storage.ImageStore
	metrics   *metrics.Metrics
	health    func(ctx context.Context) error

	views   *views
	handler http.Handler
	logger  logging.Logger
}

func NewServer(cfg *config.Config, d Deps, l logging.Logger) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	s := &Server{
		address:         cfg.HTTPAddr,
		cookieName:      cfg.CookieName,
		secureCookies:   !cfg.IsDevelopment(),
		shutdownTimeout: cfg.ShutdownTimeout,
		accounts:        d.Accounts,
		inventory:       d.Inventory,
		favorites:       d.Favorites,
		tokens:          d.Tokens,
		images:          d.Images,
		metrics:         d.Metrics,
		health:          d.Health,
		views:           v,
		logger:          l.With("module", "http_server"),
	}
	s.handler = s.withRequestID(s.accessLog(s.identity(s.routes())))
	return s, nil
}

// Handler is the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)
	r.NotFoundHandler = http.HandlerFunc(s.notFound)

	r.HandleFunc("/", s.home).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/account").Subrouter()
	a.HandleFunc("/", s.requireLogin(s.accountManagement)).Methods(http.MethodGet)
	a.HandleFunc("/login", s.loginPage).Methods(http.MethodGet)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.HandleFunc("/register", s.registerPage).Methods(http.MethodGet)
	a.HandleFunc("/register", s.register).Methods(http.MethodPost)
	a.HandleFunc("/logout", s.logout).Methods(http.MethodGet)
	a.HandleFunc("/update/{account_id}", s.requireLogin(s.updateAccountPage)).Methods(http.MethodGet)
	a.HandleFunc("/update", s.requireLogin(s.updateAccount)).Methods(http.MethodPost)
	a.HandleFunc("/update-password", s.requireLogin(s.updatePassword)).Methods(http.MethodPost)
	a.HandleFunc("/favorites", s.requireLogin(s.favoritesPage)).Methods(http.MethodGet)
	a.HandleFunc("/favorites/add", s.requireLogin(s.addFavorite)).Methods(http.MethodPost)
	a.HandleFunc("/favorites/remove", s.requireLogin(s.removeFavorite)).Methods(http.MethodPost)

	i := r.PathPrefix("/inv").Subrouter()
	i.HandleFunc("/type/{classification_id}", s.vehiclesByClassification).Methods(http.MethodGet)
	i.HandleFunc("/detail/{inv_id}", s.vehicleDetail).Methods(http.MethodGet)
	i.HandleFunc("/", s.requireManager(s.inventoryManagement)).Methods(http.MethodGet)
	i.HandleFunc("/add-classification", s.requireManager(s.addClassificationPage)).Methods(http.MethodGet)
	i.HandleFunc("/add-classification", s.requireManager(s.addClassification)).Methods(http.MethodPost)
	i.HandleFunc("/add-inventory", s.requireManager(s.addVehiclePage)).Methods(http.MethodGet)
	i.HandleFunc("/add-inventory", s.requireManager(s.addVehicle)).Methods(http.MethodPost)
	i.HandleFunc("/getInventory/{classification_id}", s.requireManager(s.inventoryJSON)).Methods(http.MethodGet)
	i.HandleFunc("/edit/{inv_id}", s.requireManager(s.editVehiclePage)).Methods(http.MethodGet)
	i.HandleFunc("/update/", s.requireManager(s.updateVehicle)).Methods(http.MethodPost)
	i.HandleFunc("/delete/{inv_id}", s.requireManager(s.deleteVehiclePage)).Methods(http.MethodGet)
	i.HandleFunc("/delete/", s.requireManager(s.deleteVehicle)).Methods(http.MethodPost)
	i.HandleFunc("/image-upload-url", s.requireManager(s.imageUploadURL)).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", page{Title: "Home"})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
