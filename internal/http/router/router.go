// Package router wires the HTTP routes to their handlers.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/people-registry/internal/http/handlers/person"
	"github.com/aanand-mishra/people-registry/internal/http/middleware"
	"github.com/aanand-mishra/people-registry/internal/notify"
	"github.com/aanand-mishra/people-registry/internal/utils/response"
)

// New returns the application's HTTP handler.
//
// Route table:
//
//	GET    /healthz               → liveness check
//	GET    /api/people            → list view rows
//	POST   /api/people            → new-person form
//	GET    /api/people/{index}    → selected row
//	PUT    /api/people/{index}    → edit-person form
//	DELETE /api/people/{index}    → remove selected row
func New(reg person.Registry, v person.Validator, sink notify.Sink, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	})

	r.Route("/api/people", func(r chi.Router) {
		r.Get("/", person.GetList(reg))
		r.Post("/", person.New(reg, v, sink))
		r.Get("/{index}", person.GetByIndex(reg))
		r.Put("/{index}", person.Update(reg, v, sink))
		r.Delete("/{index}", person.Delete(reg, sink))
	})

	return r
}
