// internal/app/features/invites/redeem.go
package invites

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/normalize"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

const minPasswordLen = 8

type redeemRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type redeemResponse struct {
	User models.User `json:"user"`
}

// HandleRedeem handles POST /invitations/redeem. It turns a valid
// invitation into a club account, signs the new member in, and marks the
// invitation accepted. The submitted email must match the invited one;
// the comparison ignores case.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	token, err := inputval.Require("token", req.Token, inputval.MaxTokenLen)
	if err != nil {
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
	if len(req.Password) < minPasswordLen {
		respond.Error(w, h.Log, apperr.Newf(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLen))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.verifyWireToken(ctx, token)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if normalize.Email(email) != inv.Email {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "this invitation was issued to a different email address"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to hash password", err))
		return
	}

	clubID := inv.ClubID
	user, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
		Role:         inv.Role,
		ClubID:       &clubID,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			user, err = h.attachExisting(ctx, inv)
			if err != nil {
				respond.Error(w, h.Log, err)
				return
			}
		} else {
			respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create account", err))
			return
		}
	}

	// The account is already attached; an acceptance race here only
	// loses the bookkeeping transition, so it is logged, not surfaced.
	if err := h.Invitations.MarkAccepted(ctx, inv.ID); err != nil {
		h.Log.Warn("invitation accept transition failed",
			zap.String("invitation_id", inv.ID.Hex()),
			zap.Error(err))
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to establish session", err))
		return
	}

	h.Log.Info("invitation redeemed",
		zap.String("invitation_id", inv.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
		zap.String("club_id", inv.ClubID.Hex()))
	respond.JSON(w, http.StatusCreated, redeemResponse{User: user})
}

// attachExisting handles redemption by an email that already has an
// account. An unaffiliated account is attached to the inviting club with
// the invited role; an account already attached to the inviting club is
// a converged retry and succeeds as-is; an account belonging to another
// club cannot redeem. The existing password is left alone.
func (h *Handler) attachExisting(ctx context.Context, inv *models.Invitation) (models.User, error) {
	existing, err := h.Users.GetByEmail(ctx, inv.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperr.New(apperr.Internal, "account lookup failed")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}
	if existing.ClubID != nil && !existing.ClubID.IsZero() {
		// A retry after the account write succeeded but before the
		// invitation flipped to accepted lands here; finish instead of
		// refusing.
		if *existing.ClubID == inv.ClubID {
			return *existing, nil
		}
		return models.User{}, apperr.New(apperr.AlreadyExists, "an account with this email already belongs to a club")
	}
	if err := h.Users.SetClub(ctx, existing.ID, inv.ClubID, inv.Role); err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to attach account to club", err)
	}
	refreshed, err := h.Users.GetByID(ctx, existing.ID)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}
	return *refreshed, nil
}
