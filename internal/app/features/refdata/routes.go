// internal/app/features/refdata/routes.go
package refdata

import (
	"github.com/go-chi/chi/v5"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
)

// Routes mounts the reference-data console, admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole("admin"))

	r.Get("/", h.ServeIndex)
	r.Post("/{kind}", h.HandleCreate)
	r.Post("/{kind}/{id}/update", h.HandleUpdate)
	r.Post("/{kind}/{id}/delete", h.HandleDelete)

	return r
}
