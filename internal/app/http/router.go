package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/app/config"
	"tarificateur/go_backend/internal/app/http/handlers"
	"tarificateur/go_backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(log))
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	r.Get("/health", h.Health)

	r.Route("/api/devis", func(r chi.Router) {
		r.Get("/", h.ListQuotes)
		r.Get("/{id}", h.GetQuote)
		r.Get("/{id}/docx", h.QuoteDocx)
		r.Get("/{id}/pdf", h.QuotePDF)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIToken(cfg.APIToken))

			r.Post("/", h.CreateQuote)
			r.Patch("/{id}", h.UpdateQuote)
		})
	})

	return r
}
