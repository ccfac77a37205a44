package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/services"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
	"github.com/gorilla/mux"
)

type loginView struct {
	Email string
}

type registerView struct {
	FirstName string
	LastName  string
	Email     string
}

type updateView struct {
	AccountID int64
	FirstName string
	LastName  string
	Email     string
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "account/login", page{Title: "Login", Data: loginView{}})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	in := validation.Login{
		Email:    r.PostForm.Get(validation.FieldEmail),
		Password: r.PostForm.Get(validation.FieldPassword),
	}
	in.Normalize()
	if errs := in.Validate(); !errs.Empty() {
		s.render(w, r, http.StatusBadRequest, "account/login", page{
			Title: "Login", Errors: errs, Data: loginView{Email: in.Email},
		})
		return
	}

	out, err := s.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.metrics.Login("error")
		s.serverError(w, r, err)
		return
	}

	if out.State != services.Authenticated {
		s.metrics.Login(out.Reason.String())
		s.logger.Info(r.Context(), "login rejected", "reason", out.Reason.String())
		s.render(w, r, http.StatusBadRequest, "account/login", page{
			Title: "Login", Notice: services.MsgLoginRejected, Data: loginView{Email: in.Email},
		})
		return
	}

	s.metrics.Login(out.State.String())
	s.logger.Info(r.Context(), "login succeeded", "account_id", out.Account.ID)
	s.setAuthCookie(w, out.Token)
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "account/register", page{Title: "Register", Data: registerView{}})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	in := validation.Registration{
		FirstName: r.PostForm.Get(validation.FieldFirstName),
		LastName:  r.PostForm.Get(validation.FieldLastName),
		Email:     r.PostForm.Get(validation.FieldEmail),
		Password:  r.PostForm.Get(validation.FieldPassword),
	}

	snap, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			in.Normalize()
			s.render(w, r, http.StatusBadRequest, "account/register", page{
				Title:  "Register",
				Errors: verrs,
				Data:   registerView{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email},
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusCreated, "account/login", page{
		Title:  "Login",
		Notice: fmt.Sprintf("Congratulations, you're registered %s. Please log in.", snap.FirstName),
		Data:   loginView{Email: snap.Email},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	s.redirectWithNotice(w, r, "/", "You have been logged out.")
}

func (s *Server) accountManagement(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	s.render(w, r, http.StatusOK, "account/management", page{
		Title: "Account Management",
		Data:  id.Account(),
	})
}

func (s *Server) updateAccountPage(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(mux.Vars(r)["account_id"], 10, 64)
	if err != nil {
		s.notFound(w, r)
		return
	}
	if d := auth.RequireOwner(auth.FromContext(r.Context()), accountID); !d.Allowed {
		s.denyOwner(w, r, d, "You are not authorized to update that account.")
		return
	}

	a, err := s.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "account/update", page{
		Title: "Update Account",
		Data:  updateView{AccountID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email},
	})
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	accountID, _ := strconv.ParseInt(r.PostForm.Get(validation.FieldAccountID), 10, 64)
	if d := auth.RequireOwner(auth.FromContext(r.Context()), accountID); !d.Allowed {
		s.denyOwner(w, r, d, "Unauthorized account update.")
		return
	}

	in := validation.Profile{
		AccountID: accountID,
		FirstName: r.PostForm.Get(validation.FieldFirstName),
		LastName:  r.PostForm.Get(validation.FieldLastName),
		Email:     r.PostForm.Get(validation.FieldEmail),
	}

	snap, token, err := s.accounts.UpdateProfile(r.Context(), in)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			in.Normalize()
			s.render(w, r, http.StatusBadRequest, "account/update", page{
				Title:  "Update Account",
				Errors: verrs,
				Data:   updateView{AccountID: accountID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email},
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "account updated", "account_id", snap.ID)
	s.setAuthCookie(w, token)
	s.redirectWithNotice(w, r, "/account/", "Account information updated successfully.")
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	id := auth.FromContext(r.Context())
	accountID, _ := strconv.ParseInt(r.PostForm.Get(validation.FieldAccountID), 10, 64)
	if d := auth.RequireOwner(id, accountID); !d.Allowed {
		s.denyOwner(w, r, d, "Unauthorized password update.")
		return
	}

	err := s.accounts.UpdatePassword(r.Context(), validation.PasswordChange{
		AccountID: accountID,
		Password:  r.PostForm.Get(validation.FieldPassword),
	})

	var verrs validation.Errors
	switch {
	case err == nil:
		s.redirectWithNotice(w, r, "/account/", "Password updated successfully.")
	case errors.As(err, &verrs):
		a := id.Account()
		s.render(w, r, http.StatusBadRequest, "account/update", page{
			Title:  "Update Account",
			Errors: verrs,
			Data:   updateView{AccountID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email},
		})
	case errors.Is(err, services.ErrPasswordNotUpdated):
		s.redirectWithNotice(w, r, "/account/", "Password update failed.")
	default:
		s.serverError(w, r, err)
	}
}

// denyOwner sends anonymous callers to the login page and everyone else
// back to their own account page.
func (s *Server) denyOwner(w http.ResponseWriter, r *http.Request, d auth.Decision, msg string) {
	if d.Reason == auth.DenyAnonymous {
		s.redirectWithNotice(w, r, "/account/login", noticeLogin)
		return
	}
	s.logger.Info(r.Context(), "account access denied", "error", d.Err())
	s.redirectWithNotice(w, r, "/account/", msg)
}
