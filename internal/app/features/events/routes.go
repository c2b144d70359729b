// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
)

// Routes mounts the event pages. Browsing and detail are public; everything
// that mutates requires a signed-in user. The join-request triage router is
// passed in and nested under /{id}/requests so the whole event surface hangs
// off one mount.
func Routes(h *Handler, requests chi.Router, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeNew)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)
	})

	r.Mount("/{id}/requests", requests)

	return r
}
