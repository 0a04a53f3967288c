// internal/app/features/events/wishlist.go
package events

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
)

// HandleWishlistAdd handles PUT /events/{eventID}/wishlist. Adding an
// event that is already on the list changes nothing.
func (h *Handler) HandleWishlistAdd(w http.ResponseWriter, r *http.Request) {
	h.setWishlist(w, r, true)
}

// HandleWishlistRemove handles DELETE /events/{eventID}/wishlist.
func (h *Handler) HandleWishlistRemove(w http.ResponseWriter, r *http.Request) {
	h.setWishlist(w, r, false)
}

func (h *Handler) setWishlist(w http.ResponseWriter, r *http.Request, add bool) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var err error
	if add {
		err = h.Users.AddToWishlist(ctx, actorID, ev.ID)
	} else {
		err = h.Users.RemoveFromWishlist(ctx, actorID, ev.ID)
	}
	if err != nil {
		if eventstore.IsNotFound(err) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "account not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update wishlist", err))
		return
	}

	h.Log.Info("wishlist updated",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("user_id", actorID.Hex()),
		zap.Bool("wishlisted", add))
	respond.JSON(w, http.StatusOK, map[string]bool{"wishlisted": add})
}
