// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Handler manages a club's member roster: listing, role changes, and
// removal. What a caller may do to whom is decided here from the stored
// session role, never from anything the client sends.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type memberResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
	LastLogin string `json:"last_login,omitempty"`
}

func toMemberResponse(u *models.User) memberResponse {
	resp := memberResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		JoinedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !u.LastLogin.IsZero() {
		resp.LastLogin = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return resp
}

// loadTarget resolves the {memberID} URL segment to a user in the
// caller's club. Users outside the club read as absent.
func (h *Handler) loadTarget(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid member id"))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "member not found"))
			return nil, false
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "member lookup failed", err))
		return nil, false
	}
	if target.ClubID == nil || !authz.SameClub(r, *target.ClubID) {
		respond.Error(w, h.Log, apperr.New(apperr.NotFound, "member not found"))
		return nil, false
	}
	return target, true
}
