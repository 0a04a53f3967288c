// internal/app/features/joinrequests/routes.go
package joinrequests

import (
	"github.com/go-chi/chi/v5"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Post("/{requestID}/approve", h.HandleApprove)
	r.Post("/{requestID}/reject", h.HandleReject)
	return r
}
