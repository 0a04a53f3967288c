// internal/app/features/events/rsvp.go
package events

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type rsvpRequest struct {
	Attending bool `json:"attending"`
}

// HandleRSVP handles POST /events/{eventID}/rsvp. Both directions are
// idempotent: joining twice leaves one attendee entry, leaving twice is
// a quiet success.
func (h *Handler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	var req rsvpRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	user, _ := auth.CurrentUser(r)
	attendee := models.Attendee{
		UserID:   actorID,
		Email:    user.Email,
		FullName: user.Name,
		ClubName: user.ClubName,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.SetRSVP(ctx, ev.ID, attendee, req.Attending); err != nil {
		if eventstore.IsNotFound(err) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update rsvp", err))
		return
	}

	// Report what is stored, not what was requested.
	updated, err := h.Events.GetByID(ctx, ev.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to load event", err))
		return
	}
	attending := updated.HasAttendee(actorID)

	h.Log.Info("rsvp updated",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("user_id", actorID.Hex()),
		zap.Bool("attending", attending))
	respond.JSON(w, http.StatusOK, map[string]bool{"attending": attending})
}
