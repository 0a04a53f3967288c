// internal/app/features/joinrequests/review.go
package joinrequests

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// HandleApprove handles POST /join-requests/{requestID}/approve. The
// request's status and the runner's membership change together; a request
// someone else already processed fails rather than double-applying.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	req, actor, ok := h.authorizeReview(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	approved, err := h.Requests.Approve(ctx, req.ID, actor)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.sendApproval(ctx, approved, actor)

	h.Log.Info("join request approved",
		zap.String("request_id", req.ID.Hex()),
		zap.String("processed_by", actor.Hex()))
	resp := toJoinRequestResponse(approved)
	respond.JSON(w, http.StatusOK, resp)
}

// HandleReject handles POST /join-requests/{requestID}/reject. The
// runner stays unaffiliated and may request again later.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	req, actor, ok := h.authorizeReview(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rejected, err := h.Requests.Reject(ctx, req.ID, actor)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("join request rejected",
		zap.String("request_id", req.ID.Hex()),
		zap.String("processed_by", actor.Hex()))
	resp := toJoinRequestResponse(rejected)
	respond.JSON(w, http.StatusOK, resp)
}

// authorizeReview loads the request named in the URL and confirms the
// caller moderates the club it targets. The role comes from the stored
// session user on every call, never from the request body.
func (h *Handler) authorizeReview(w http.ResponseWriter, r *http.Request) (*models.JoinRequest, primitive.ObjectID, bool) {
	_, _, actor, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return nil, primitive.NilObjectID, false
	}
	if !authz.CanModerate(r) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only club admins and moderators can review join requests"))
		return nil, primitive.NilObjectID, false
	}

	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid request id"))
		return nil, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Requests.GetByID(ctx, reqID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "join request not found"))
			return nil, primitive.NilObjectID, false
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "join request lookup failed", err))
		return nil, primitive.NilObjectID, false
	}
	if !authz.SameClub(r, req.ClubID) {
		// Another club's request reads as absent.
		respond.Error(w, h.Log, apperr.New(apperr.NotFound, "join request not found"))
		return nil, primitive.NilObjectID, false
	}
	return req, actor, true
}

func (h *Handler) sendApproval(ctx context.Context, req *models.JoinRequest, actor primitive.ObjectID) {
	clubName := ""
	if club, err := h.Clubs.GetByID(ctx, req.ClubID); err == nil {
		clubName = club.Name
	}
	approvedBy := ""
	if approver, err := h.Users.GetByID(ctx, actor); err == nil {
		approvedBy = approver.FullName
	}
	if err := h.EmailRate.Allow(ctx, actor.Hex()); err != nil {
		h.Log.Warn("approval email suppressed", zap.String("request_id", req.ID.Hex()), zap.Error(err))
		return
	}
	if _, err := h.Mailer.SendApprovalConfirmation(req.UserEmail, req.UserName, clubName, approvedBy); err != nil {
		h.Log.Warn("approval email failed", zap.String("request_id", req.ID.Hex()), zap.Error(err))
	}
}
