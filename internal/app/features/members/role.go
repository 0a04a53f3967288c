// internal/app/features/members/role.go
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

type roleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles PATCH /members/{memberID}/role. Admins can
// assign any role; moderators can only touch plain members and only keep
// them plain members or lift them to moderator. Nobody edits themselves.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actorRole, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}
	if !memberpolicy.CanEditMember(actorRole, actorID, target) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "you cannot change this member's role"))
		return
	}

	var req roleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !memberpolicy.RoleAllowed(req.Role, memberpolicy.EditableRoles(actorRole)) {
		respond.Error(w, h.Log, apperr.Newf(apperr.PermissionDenied, "your role cannot assign %q", req.Role))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateRole(ctx, target.ID, *target.ClubID, req.Role); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update role", err))
		return
	}

	h.Log.Info("member role changed",
		zap.String("member_id", target.ID.Hex()),
		zap.String("role", req.Role),
		zap.String("changed_by", actorID.Hex()))

	target.Role = req.Role
	respond.JSON(w, http.StatusOK, toMemberResponse(target))
}
