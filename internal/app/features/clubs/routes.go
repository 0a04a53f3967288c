// internal/app/features/clubs/routes.go
package clubs

import (
	"github.com/go-chi/chi/v5"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleRegister)
	r.Get("/{clubID}", h.HandleGet)
	r.Patch("/{clubID}", h.HandleUpdate)
	return r
}
