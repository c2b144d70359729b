// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
)

// Routes mounts the profile pages. Everything here requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeView)
	r.Get("/edit", h.ServeEdit)
	r.Post("/edit", h.HandleEdit)

	return r
}
