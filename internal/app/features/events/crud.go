// internal/app/features/events/crud.go
package events

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type eventRequest struct {
	Name             string     `json:"name"`
	Location         *string    `json:"location"`
	DistanceKM       *float64   `json:"distance_km"`
	StartsAt         *time.Time `json:"starts_at"`
	Description      *string    `json:"description"`
	SignupLink       *string    `json:"signup_link"`
	IsRecurring      *bool      `json:"is_recurring"`
	RecurringPattern *string    `json:"recurring_pattern"`
	RecurringEnd     *time.Time `json:"recurring_end"`
}

func validRecurringPattern(p string) bool {
	switch p {
	case "weekly", "biweekly", "monthly":
		return true
	}
	return false
}

// HandleCreate handles POST /events. Any active member may put a run on
// the club calendar.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}
	clubID := authz.UserClubID(r)
	if clubID.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you do not belong to a club"))
		return
	}

	var req eventRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	name, err := inputval.Require("name", req.Name, inputval.MaxNameLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if req.StartsAt == nil || req.StartsAt.IsZero() {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "starts_at is required"))
		return
	}
	if req.RecurringPattern != nil && !validRecurringPattern(*req.RecurringPattern) {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "recurring_pattern must be weekly, biweekly, or monthly"))
		return
	}

	user, _ := auth.CurrentUser(r)
	ev := models.Event{
		ClubID:         clubID,
		Name:           name,
		StartsAt:       req.StartsAt.UTC(),
		CreatedBy:      actorID,
		CreatedByEmail: user.Email,
	}
	if req.Location != nil {
		ev.Location = inputval.Sanitize(*req.Location, inputval.MaxDefaultLen)
	}
	if req.DistanceKM != nil {
		ev.DistanceKM = *req.DistanceKM
	}
	if req.Description != nil {
		ev.Description = inputval.Sanitize(*req.Description, inputval.MaxDefaultLen)
	}
	if req.SignupLink != nil {
		ev.SignupLink = inputval.Sanitize(*req.SignupLink, inputval.MaxDefaultLen)
	}
	if req.IsRecurring != nil {
		ev.IsRecurring = *req.IsRecurring
	}
	if req.RecurringPattern != nil {
		ev.RecurringPattern = *req.RecurringPattern
	}
	if req.RecurringEnd != nil {
		end := req.RecurringEnd.UTC()
		ev.RecurringEnd = &end
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Events.Create(ctx, ev)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create event", err))
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", created.ID.Hex()),
		zap.String("club_id", clubID.Hex()))
	respond.JSON(w, http.StatusCreated, created)
}

// HandleUpdate handles PATCH /events/{eventID}. Absent fields stay as
// they are; present fields are overwritten, including to zero values.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	if !canMutate(r, actorID, ev) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only the event's creator or a club admin can edit it"))
		return
	}

	var req eventRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if req.RecurringPattern != nil && !validRecurringPattern(*req.RecurringPattern) {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "recurring_pattern must be weekly, biweekly, or monthly"))
		return
	}

	upd := eventstore.EventUpdate{
		DistanceKM:       req.DistanceKM,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: req.RecurringPattern,
		RecurringEnd:     req.RecurringEnd,
	}
	if req.Name != "" {
		name, err := inputval.Require("name", req.Name, inputval.MaxNameLen)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		upd.Name = &name
	}
	if req.StartsAt != nil {
		startsAt := req.StartsAt.UTC()
		upd.StartsAt = &startsAt
	}
	if req.Location != nil {
		loc := inputval.Sanitize(*req.Location, inputval.MaxDefaultLen)
		upd.Location = &loc
	}
	if req.Description != nil {
		desc := inputval.Sanitize(*req.Description, inputval.MaxDefaultLen)
		upd.Description = &desc
	}
	if req.SignupLink != nil {
		link := inputval.Sanitize(*req.SignupLink, inputval.MaxDefaultLen)
		upd.SignupLink = &link
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.Update(ctx, ev.ID, ev.ClubID, upd); err != nil {
		if eventstore.IsNotFound(err) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update event", err))
		return
	}

	updated, err := h.Events.GetByID(ctx, ev.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "event lookup failed", err))
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /events/{eventID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	if !canMutate(r, actorID, ev) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only the event's creator or a club admin can delete it"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.Delete(ctx, ev.ID, ev.ClubID); err != nil {
		if eventstore.IsNotFound(err) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "event not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to delete event", err))
		return
	}

	h.Log.Info("event deleted",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("deleted_by", actorID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
