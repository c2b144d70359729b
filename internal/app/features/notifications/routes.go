// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/{id}/read", h.HandleMarkRead)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
