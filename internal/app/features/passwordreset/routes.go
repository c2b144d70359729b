// internal/app/features/passwordreset/routes.go
package passwordreset

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRequest)
	r.Post("/", h.HandleRequest)
	r.Get("/confirm", h.ServeConfirm)
	r.Post("/confirm", h.HandleConfirm)
	return r
}
