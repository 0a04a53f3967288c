// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/ratelimit"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

const minPasswordLen = 8

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Log:        logger,
	}
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User models.User `json:"user"`
}

// HandleSignup handles POST /auth/signup. New accounts start
// unaffiliated; membership comes later via invitation or join request.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	fullName, err := inputval.Require("full_name", req.FullName, inputval.MaxNameLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	email, err := inputval.Email(req.Email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Error(w, h.Log, apperr.Newf(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLen))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to hash password", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			respond.Error(w, h.Log, apperr.New(apperr.AlreadyExists, "an account with this email already exists"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create account", err))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to establish session", err))
		return
	}

	h.Log.Info("account created", zap.String("user_id", user.ID.Hex()))
	respond.JSON(w, http.StatusCreated, sessionResponse{User: user})
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	email, err := inputval.Email(req.Email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login throttled",
			zap.String("reason", reason),
			zap.String("ip", ratelimit.ClientIP(r)))
		respond.Error(w, h.Log, apperr.New(apperr.ResourceExhausted, "too many login attempts; try again later"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same message as a wrong password; existence stays hidden.
			respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "login lookup failed", err))
		return
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}
	if user.Status == "inactive" {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "this account has been deactivated"))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to establish session", err))
		return
	}

	h.Limiter.ResetEmail(email)
	_ = h.Users.SetLastLogin(ctx, user.ID)

	h.Log.Info("login", zap.String("user_id", user.ID.Hex()))
	respond.JSON(w, http.StatusOK, sessionResponse{User: *user})
}
