// internal/app/features/requests/routes.go
package requests

import (
	"github.com/go-chi/chi/v5"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
)

// Routes mounts the triage page and its decision actions. Mounted under
// /events/{id}/requests; the handler re-reads {id} from the route context.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeRequests)
	r.Post("/{userId}/accept", h.HandleAccept)
	r.Post("/{userId}/reject", h.HandleReject)

	return r
}
