// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.HandleList)
	r.Patch("/{memberID}/role", h.HandleUpdateRole)
	r.Delete("/{memberID}", h.HandleRemove)
	return r
}
