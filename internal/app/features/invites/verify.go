// internal/app/features/invites/verify.go
package invites

import (
	"context"
	"net/http"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/invitetoken"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type verifyResponse struct {
	ClubName string `json:"club_name"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// HandleVerify handles GET /invitations/verify?token=. It is reachable
// without a session so the account-setup page can render the invitation
// details before the invitee has credentials.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	raw, err := inputval.Require("token", r.URL.Query().Get("token"), inputval.MaxTokenLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.verifyWireToken(ctx, raw)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	clubName := h.clubName(ctx, inv.ClubID)
	respond.JSON(w, http.StatusOK, verifyResponse{
		ClubName: clubName,
		Email:    inv.Email,
		FullName: inv.FullName,
		Role:     inv.Role,
	})
}

// verifyWireToken parses the composite wire token, resolves it against
// the stored record, and cross-checks the embedded club ID. A token whose
// club segment disagrees with the stored invitation is treated as
// unknown, not as a different invitation.
func (h *Handler) verifyWireToken(ctx context.Context, wire string) (*models.Invitation, error) {
	clubID, random, err := invitetoken.Parse(wire)
	if err != nil {
		return nil, err
	}
	inv, err := h.Invitations.Verify(ctx, random)
	if err != nil {
		return nil, err
	}
	if inv.ClubID != clubID {
		return nil, apperr.New(apperr.NotFound, "invitation not found")
	}
	return inv, nil
}
