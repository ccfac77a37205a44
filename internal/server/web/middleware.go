package web

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/dealership/internal/logging"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

const (
	noticeLogin        = "Please log in."
	noticeNotPermitted = "You are not authorized to access that page. Please log in with an employee or admin account."
)

// withRequestID tags the request context, and therefore every log line
// written while serving it, with a request id.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := logging.WithAttrs(r.Context(), "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info(r.Context(), "http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// identity never rejects a request. A missing cookie means anonymous; a
// cookie that fails verification is cleared and the request continues
// anonymously.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.Anonymous()

		if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
			snap, err := s.tokens.Verify(c.Value)
			if err != nil {
				s.logger.Debug(r.Context(), "identity token rejected", "error", err)
				s.clearAuthCookie(w)
			} else {
				id = auth.Authenticated(*snap)
			}
		}

		ctx := auth.WithIdentity(r.Context(), id)
		if id.IsAuthenticated() {
			ctx = logging.WithAttrs(ctx, "account_id", id.AccountID())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d := auth.RequireLogin(auth.FromContext(r.Context())); !d.Allowed {
			s.redirectWithNotice(w, r, "/account/login", noticeLogin)
			return
		}
		next(w, r)
	}
}

// requireManager admits Employee and Admin accounts.
func (s *Server) requireManager(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := auth.RequireRole(auth.FromContext(r.Context()), auth.InventoryManagers...)
		switch d.Reason {
		case auth.DenyNone:
			next(w, r)
		case auth.DenyAnonymous:
			s.redirectWithNotice(w, r, "/account/login", noticeLogin)
		default:
			s.logger.Info(r.Context(), "inventory access denied", "error", d.Err())
			s.redirectWithNotice(w, r, "/account/login", noticeNotPermitted)
		}
	}
}
