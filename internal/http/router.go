package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/divvy/internal/http/balance"
	"github.com/MrJamesThe3rd/divvy/internal/http/chat"
	"github.com/MrJamesThe3rd/divvy/internal/http/expense"
	"github.com/MrJamesThe3rd/divvy/internal/http/export"
	"github.com/MrJamesThe3rd/divvy/internal/http/group"
	"github.com/MrJamesThe3rd/divvy/internal/http/importcsv"
)

type Handlers struct {
	Groups   *group.Handler
	Expenses *expense.Handler
	Balances *balance.Handler
	Export   *export.Handler
	Chat     *chat.Handler
	Import   *importcsv.Handler
}

func New(allowedOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Groups.MemberRoutes(r)
			h.Balances.MemberRoutes(r)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Groups.GroupRoutes(r)
				h.Balances.GroupRoutes(r)
				h.Export.Routes(r)
				r.Route("/{id}/expenses", h.Expenses.Routes)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("multipart/form-data"))
				r.Route("/{id}/imports", h.Import.Routes)
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Chat.Routes(r)
		})
	})

	return router
}
