// Package web serves the HTML front-end: the quote list, the new-quote page
// and the edit page. Every page talks to the quote API through API.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/client"
	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

// API is the part of the quote API the pages use.
type API interface {
	List(ctx context.Context) ([]quote.Quote, error)
	Get(ctx context.Context, id int64) (quote.Quote, error)
	Create(ctx context.Context, q quote.Quote) (int64, error)
	Update(ctx context.Context, id int64, q quote.Quote) error
	DocxURL(id int64) string
	PdfURL(id int64) string
}

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	api   API
	log   *zap.Logger
	pages *template.Template
}

func New(api API, log *zap.Logger) (*Server, error) {
	pages, err := template.New("").Funcs(template.FuncMap{
		"amount": quote.FormatAmount,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{api: api, log: log, pages: pages}, nil
}

func NewRouter(api API, log *zap.Logger) (http.Handler, error) {
	s, err := New(api, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Get("/", s.Home)
	r.Get("/devis/export.xlsx", s.Export)
	r.Get("/nouveau-devis", s.NewQuote)
	r.Post("/nouveau-devis", s.CreateQuote)
	r.Get("/devis/{id}/edit", s.EditQuote)
	r.Post("/devis/{id}/edit", s.UpdateQuote)
	return r, nil
}

// component wraps a named page template as a templ component.
func (s *Server) component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return s.pages.ExecuteTemplate(w, name, data)
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.component(name, data).Render(r.Context(), w); err != nil {
		s.log.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

func location() *time.Location { return document.Location() }

// errorText returns the message the API sent with a failure, or fallback.
func errorText(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
