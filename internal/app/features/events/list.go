// internal/app/features/events/list.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type eventListResponse struct {
	Events []models.Event `json:"events"`
}

// HandleList handles GET /events?from=. The list covers the caller's
// club, ordered by start time. "from" is RFC 3339 and optional; pass
// "from=now" for the upcoming slice.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	var from time.Time
	switch raw := r.URL.Query().Get("from"); raw {
	case "":
	case "now":
		from = time.Now().UTC()
	default:
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "from must be RFC 3339 or \"now\""))
			return
		}
		from = parsed.UTC()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evs, err := h.Events.ListByClub(ctx, clubID, from)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to list events", err))
		return
	}
	if evs == nil {
		evs = []models.Event{}
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Events: evs})
}

// HandleListAttending handles GET /events/attending: the events the
// caller has RSVPed to.
func (h *Handler) HandleListAttending(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evs, err := h.Events.ListAttending(ctx, actorID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to list events", err))
		return
	}
	if evs == nil {
		evs = []models.Event{}
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Events: evs})
}
