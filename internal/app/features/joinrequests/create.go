// internal/app/features/joinrequests/create.go
package joinrequests

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	joinrequeststore "github.com/pacerhub/pacerhub/internal/app/store/joinrequests"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type createRequest struct {
	ClubID string `json:"club_id"`
}

// HandleCreate handles POST /join-requests. Only unaffiliated accounts
// can ask to join, and only one pending request per user and club exists
// at a time. Rejection does not burn the pair; the runner may ask again.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}
	if !authz.UserClubID(r).IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you already belong to a club"))
		return
	}

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	clubID, err := primitive.ObjectIDFromHex(req.ClubID)
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid club id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "club not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "club lookup failed", err))
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "account lookup failed", err))
		return
	}

	// The partial unique index is the race-safe backstop; this check just
	// answers the common case without an insert attempt.
	pending, err := h.Requests.HasPending(ctx, userID, clubID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "join request lookup failed", err))
		return
	}
	if pending {
		respond.Error(w, h.Log, apperr.New(apperr.DuplicateRequest, "you already have a pending request for this club"))
		return
	}

	created, err := h.Requests.Create(ctx, models.JoinRequest{
		UserID:    user.ID,
		ClubID:    clubID,
		UserName:  user.FullName,
		UserEmail: user.Email,
	})
	if err != nil {
		if errors.Is(err, joinrequeststore.ErrDuplicateRequest) {
			respond.Error(w, h.Log, apperr.New(apperr.DuplicateRequest, "you already have a pending request for this club"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create join request", err))
		return
	}

	// Notify the club's reviewers. The request stands even when no email
	// goes out, and the requester's quota covers the notification batch.
	h.notifyReviewers(ctx, &created, club.Name, user.ID.Hex())

	h.Log.Info("join request created",
		zap.String("request_id", created.ID.Hex()),
		zap.String("club_id", clubID.Hex()),
		zap.String("user_id", user.ID.Hex()))
	resp := toJoinRequestResponse(&created)
	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) notifyReviewers(ctx context.Context, req *models.JoinRequest, clubName, actor string) {
	emails, err := h.Clubs.ModeratorEmails(ctx, req.ClubID)
	if err != nil {
		h.Log.Warn("reviewer lookup failed", zap.String("club_id", req.ClubID.Hex()), zap.Error(err))
		return
	}
	if len(emails) == 0 {
		return
	}
	if err := h.EmailRate.Allow(ctx, actor); err != nil {
		h.Log.Warn("join request notification suppressed",
			zap.String("request_id", req.ID.Hex()),
			zap.Error(err))
		return
	}
	if _, err := h.Mailer.SendJoinRequestNotification(emails, req.UserName, req.UserEmail, clubName, req.ID.Hex()); err != nil {
		h.Log.Warn("join request notification failed",
			zap.String("request_id", req.ID.Hex()),
			zap.Error(err))
	}
}
