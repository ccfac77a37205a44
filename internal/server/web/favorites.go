package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/services"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
)

// Favorites always act on the caller's own account, so no owner check is
// needed beyond requireLogin.

func (s *Server) favoritesPage(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	vehicles, err := s.favorites.List(r.Context(), id.AccountID())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "account/favorites", page{Title: "Saved Vehicles", Data: vehicles})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}
	invID, ok := formID(r, validation.FieldInvID)
	if !ok {
		s.notFound(w, r)
		return
	}

	id := auth.FromContext(r.Context())
	back := fmt.Sprintf("/inv/detail/%d", invID)

	err := s.favorites.Add(r.Context(), id.AccountID(), invID)
	switch {
	case err == nil:
		s.redirectWithNotice(w, r, back, "Vehicle saved!")
	case errors.Is(err, services.ErrAlreadyFavorite):
		s.redirectWithNotice(w, r, back, "That vehicle is already in your saved list.")
	case errors.Is(err, common.ErrorNotFound):
		s.notFound(w, r)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}
	invID, ok := formID(r, validation.FieldInvID)
	if !ok {
		s.notFound(w, r)
		return
	}

	id := auth.FromContext(r.Context())
	if _, err := s.favorites.Remove(r.Context(), id.AccountID(), invID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.redirectWithNotice(w, r, "/account/favorites", "Vehicle removed from saved list.")
}
