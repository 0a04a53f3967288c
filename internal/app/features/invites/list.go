// internal/app/features/invites/list.go
package invites

import (
	"context"
	"net/http"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type listResponse struct {
	Invitations []invitationResponse `json:"invitations"`
}

// HandleList handles GET /invitations?status=. It returns the caller's
// club's invitations, newest first. Raw tokens are not included; a
// pending invitation's link lives only in the email that carried it.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !authz.CanModerate(r) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only club admins and moderators can view invitations"))
		return
	}
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", models.InviteStatusPending, models.InviteStatusAccepted, models.InviteStatusCancelled:
	default:
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "unknown status filter"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	invs, err := h.Invitations.ListByClub(ctx, clubID, status)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to list invitations", err))
		return
	}

	out := make([]invitationResponse, 0, len(invs))
	for i := range invs {
		out = append(out, toInvitationResponse(&invs[i], false))
	}
	respond.JSON(w, http.StatusOK, listResponse{Invitations: out})
}
