// internal/app/features/joinrequests/list.go
package joinrequests

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
	Requests []joinRequestResponse `json:"requests"`
}

// HandleList handles GET /join-requests?status=. It lists the caller's
// club's requests, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !authz.CanModerate(r) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only club admins and moderators can view join requests"))
		return
	}
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", models.JoinStatusPending, models.JoinStatusApproved, models.JoinStatusRejected:
	default:
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "unknown status filter"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reqs, err := h.Requests.ListByClub(ctx, clubID, status)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to list join requests", err))
		return
	}

	out := make([]joinRequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toJoinRequestResponse(&reqs[i]))
	}
	respond.JSON(w, http.StatusOK, listResponse{Requests: out})
}
