// internal/app/features/invites/cancel.go
package invites

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
)

// HandleCancel handles POST /invitations/{invitationID}/cancel. Cancelling
// an already-cancelled invitation succeeds quietly; cancelling an accepted
// one does not.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if !authz.CanModerate(r) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only club admins and moderators can cancel invitations"))
		return
	}
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	invID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "invitationID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid invitation id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Cancel is scoped to the caller's club, so another club's
	// invitation comes back not-found rather than leaking existence.
	if err := h.Invitations.Cancel(ctx, invID, clubID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("invitation cancelled", zap.String("invitation_id", invID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
