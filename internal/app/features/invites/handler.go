// internal/app/features/invites/handler.go
package invites

import (
	"time"

	"go.uber.org/zap"

	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	"github.com/pacerhub/pacerhub/internal/app/store/emailrate"
	invitationstore "github.com/pacerhub/pacerhub/internal/app/store/invitations"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/invitetoken"
	"github.com/pacerhub/pacerhub/internal/app/system/mailer"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Handler wires the invitation lifecycle: create, verify, redeem,
// cancel, list.
type Handler struct {
	Invitations *invitationstore.Store
	Users       *userstore.Store
	Clubs       *clubstore.Store
	EmailRate   *emailrate.Store
	Mailer      *mailer.Mailer
	SessionMgr  *auth.SessionManager
	Log         *zap.Logger
}

func NewHandler(
	invitations *invitationstore.Store,
	users *userstore.Store,
	clubs *clubstore.Store,
	emailRate *emailrate.Store,
	m *mailer.Mailer,
	sessionMgr *auth.SessionManager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Invitations: invitations,
		Users:       users,
		Clubs:       clubs,
		EmailRate:   emailRate,
		Mailer:      m,
		SessionMgr:  sessionMgr,
		Log:         logger,
	}
}

type invitationResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

func toInvitationResponse(inv *models.Invitation, includeToken bool) invitationResponse {
	resp := invitationResponse{
		ID:        inv.ID.Hex(),
		Email:     inv.Email,
		FullName:  inv.FullName,
		Role:      inv.Role,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: inv.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if includeToken {
		resp.Token = invitetoken.Format(inv.ClubID, inv.CreatedAt, inv.Token)
	}
	return resp
}
