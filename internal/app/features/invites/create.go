// internal/app/features/invites/create.go
package invites

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/policy/memberpolicy"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type createRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type createResponse struct {
	Invitation invitationResponse `json:"invitation"`
	EmailSent  bool               `json:"email_sent"`
}

// HandleCreate handles POST /invitations. Moderators may invite members;
// admins may invite any role. The invite-role bound is enforced here, on
// the server, from the caller's stored role.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	role, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}
	clubID := authz.UserClubID(r)
	if !authz.CanModerate(r) || clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only club admins and moderators can send invitations"))
		return
	}

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	email, err := inputval.Email(req.Email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	fullName, err := inputval.Require("full_name", req.FullName, inputval.MaxNameLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}
	if !memberpolicy.RoleAllowed(req.Role, memberpolicy.AvailableInviteRoles(role)) {
		respond.Error(w, h.Log, apperr.Newf(apperr.PermissionDenied, "your role cannot invite a %s", req.Role))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, email)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to check email", err))
		return
	}
	if exists {
		respond.Error(w, h.Log, apperr.New(apperr.AlreadyExists, "an account with this email already exists"))
		return
	}

	// The quota covers every email this actor triggers, clubwide.
	if err := h.EmailRate.Allow(ctx, actorID.Hex()); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	// Inviting an email that already has a pending invitation issues a
	// fresh token; the older invitation stays valid until it expires or
	// is cancelled.
	inv, err := h.Invitations.Create(ctx, models.Invitation{
		ClubID:    clubID,
		Email:     email,
		FullName:  fullName,
		Role:      req.Role,
		InvitedBy: actorID,
	})
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create invitation", err))
		return
	}

	// The invitation exists regardless of whether the email goes out; a
	// failed send is reported, not rolled back. The stored token can be
	// re-sent later.
	emailSent := true
	clubName := h.clubName(ctx, clubID)
	resp := toInvitationResponse(&inv, true)
	if _, err := h.Mailer.SendInvitation(inv.Email, inv.FullName, resp.Token, clubName); err != nil {
		emailSent = false
		h.Log.Warn("invitation email failed",
			zap.String("invitation_id", inv.ID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("invitation created",
		zap.String("invitation_id", inv.ID.Hex()),
		zap.String("club_id", clubID.Hex()),
		zap.String("role", inv.Role),
		zap.Bool("email_sent", emailSent))

	respond.JSON(w, http.StatusCreated, createResponse{
		Invitation: resp,
		EmailSent:  emailSent,
	})
}

func (h *Handler) clubName(ctx context.Context, clubID primitive.ObjectID) string {
	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Warn("club lookup failed", zap.String("club_id", clubID.Hex()), zap.Error(err))
		}
		return ""
	}
	return club.Name
}
