// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/attending", h.HandleListAttending)
	r.Patch("/{eventID}", h.HandleUpdate)
	r.Delete("/{eventID}", h.HandleDelete)
	r.Post("/{eventID}/rsvp", h.HandleRSVP)
	r.Put("/{eventID}/wishlist", h.HandleWishlistAdd)
	r.Delete("/{eventID}/wishlist", h.HandleWishlistRemove)
	return r
}
