// internal/app/features/invites/routes.go
package invites

import (
	"github.com/go-chi/chi/v5"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Verify and redeem run before the invitee has a session.
	r.Get("/verify", h.HandleVerify)
	r.Post("/redeem", h.HandleRedeem)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Post("/{invitationID}/cancel", h.HandleCancel)
	})

	return r
}
