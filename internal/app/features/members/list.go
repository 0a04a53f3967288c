// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
)

type listResponse struct {
	Members []memberResponse `json:"members"`
}

// HandleList handles GET /members. Any signed-in member of the club sees
// the roster, ordered by name. Removed members do not appear.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users, err := h.Users.ListByClub(ctx, clubID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to list members", err))
		return
	}

	out := make([]memberResponse, 0, len(users))
	for i := range users {
		out = append(out, toMemberResponse(&users[i]))
	}
	respond.JSON(w, http.StatusOK, listResponse{Members: out})
}
