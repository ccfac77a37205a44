package web

import (
	"encoding/base64"
	"net/http"

	"github.com/dmitrijs2005/dealership/internal/common"
)

const noticeMaxAge = 60

// setAuthCookie stores the identity token. Max-Age matches the token's own
// lifetime.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	s.expireCookie(w, s.cookieName)
}

func (s *Server) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// setNotice queues a one-shot message for the next rendered page.
func (s *Server) setNotice(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.NoticeCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   noticeMaxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popNotice returns the queued message, if any, and clears it.
func (s *Server) popNotice(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(common.NoticeCookieName)
	if err != nil {
		return ""
	}
	s.expireCookie(w, common.NoticeCookieName)

	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}

func (s *Server) redirectWithNotice(w http.ResponseWriter, r *http.Request, to, msg string) {
	s.setNotice(w, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
