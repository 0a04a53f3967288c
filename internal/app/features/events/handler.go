// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Handler covers the club calendar: event CRUD, RSVP, and each member's
// wishlist. Any active member can create events; editing and deleting is
// for the creator or a club admin.
type Handler struct {
	Events *eventstore.Store
	Users  *userstore.Store
	Log    *zap.Logger
}

func NewHandler(events *eventstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Users: users, Log: logger}
}

// canMutate reports whether the caller may edit or delete ev.
func canMutate(r *http.Request, actorID primitive.ObjectID, ev *models.Event) bool {
	if !authz.SameClub(r, ev.ClubID) {
		return false
	}
	return ev.CreatedBy == actorID || authz.IsAdmin(r)
}

// loadEvent resolves {eventID} to an event visible to the caller's club.
func (h *Handler) loadEvent(w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid event id"))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return nil, false
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "event lookup failed", err))
		return nil, false
	}
	if !authz.SameClub(r, ev.ClubID) {
		respond.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
		return nil, false
	}
	return ev, true
}
