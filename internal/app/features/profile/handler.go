// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Handler serves the signed-in user's own account.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type profileResponse struct {
	User models.User `json:"user"`
}

type updateRequest struct {
	FullName string `json:"full_name"`
}

// HandleGet handles GET /me.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "account not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "account lookup failed", err))
		return
	}
	respond.JSON(w, http.StatusOK, profileResponse{User: *user})
}

// HandleUpdate handles PATCH /me. Only the display name is editable;
// email and role are managed elsewhere.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	fullName, err := inputval.Require("full_name", req.FullName, inputval.MaxNameLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, fullName); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update profile", err))
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "account lookup failed", err))
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", userID.Hex()))
	respond.JSON(w, http.StatusOK, profileResponse{User: *user})
}
