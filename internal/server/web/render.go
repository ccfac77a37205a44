package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates
var templateFS embed.FS

var pageNames = []string{
	"home",
	"error",
	"account/login",
	"account/register",
	"account/management",
	"account/update",
	"account/favorites",
	"inventory/classification",
	"inventory/detail",
	"inventory/management",
	"inventory/add-classification",
	"inventory/vehicle-form",
	"inventory/delete",
}

var printer = message.NewPrinter(language.AmericanEnglish)

var funcs = template.FuncMap{
	"usd":     func(n int64) string { return printer.Sprintf("$%d", n) },
	"number":  func(n int64) string { return printer.Sprintf("%d", n) },
	"manager": func(t models.AccountType) bool { return t == models.AccountEmployee || t == models.AccountAdmin },
}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// page is the data every template receives. Nav, Identity and a pending
// notice are filled in by render.
type page struct {
	Title    string
	Nav      []models.Classification
	Identity auth.Identity
	Notice   string
	Errors   validation.Errors
	Data     any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	nav, err := s.inventory.Classifications(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	p.Nav = nav
	p.Identity = auth.FromContext(r.Context())
	if p.Notice == "" {
		p.Notice = s.popNotice(w, r)
	}

	t, ok := s.views.pages[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown view %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError logs err with the request's context and shows a generic page.
// It never renders the nav so a failing store cannot recurse.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	p := page{
		Title:    "Server Error",
		Identity: auth.FromContext(r.Context()),
		Data:     "Oh no! There was a crash. Maybe try a different route?",
	}

	var buf bytes.Buffer
	if t, ok := s.views.pages["error"]; ok && t.ExecuteTemplate(&buf, "layout", p) == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = buf.WriteTo(w)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error", page{
		Title: "404",
		Data:  "Sorry, we appear to have lost that page.",
	})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusBadRequest, "error", page{
		Title: "Bad Request",
		Data:  "The request could not be understood.",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
