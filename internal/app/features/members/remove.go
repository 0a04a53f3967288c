// internal/app/features/members/remove.go
package members

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/policy/memberpolicy"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
)

// HandleRemove handles DELETE /members/{memberID}. Removal detaches the
// account from the club and deactivates it; the account itself survives
// and can be brought back by a later invitation or approval.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actorRole, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !memberpolicy.CanRemoveMember(actorRole, actorID, target) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "you cannot remove this member"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SoftRemove(ctx, target.ID, *target.ClubID); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to remove member", err))
		return
	}

	h.Log.Info("member removed",
		zap.String("member_id", target.ID.Hex()),
		zap.String("removed_by", actorID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]bool{"removed": true})
}
