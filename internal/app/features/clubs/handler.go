// internal/app/features/clubs/handler.go
package clubs

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/authz"
	"github.com/pacerhub/pacerhub/internal/app/system/inputval"
	"github.com/pacerhub/pacerhub/internal/app/system/respond"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type Handler struct {
	Clubs *clubstore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(clubs *clubstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Clubs: clubs, Users: users, Log: logger}
}

type clubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	ImageURL    string `json:"image_url"`
}

type clubResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	PlanType    string `json:"plan_type"`
	IsActive    bool   `json:"is_active"`
}

func toClubResponse(c models.Club) clubResponse {
	return clubResponse{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		Website:     c.Website,
		ImageURL:    c.ImageURL,
		PlanType:    c.PlanType,
		IsActive:    c.IsActive,
	}
}

// HandleRegister handles POST /clubs. The registering user must be
// unaffiliated; they become the new club's admin.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}
	if authz.UserClubID(r) != primitive.NilObjectID {
		respond.Error(w, h.Log, apperr.New(apperr.FailedPrecondition, "you already belong to a club"))
		return
	}

	var req clubRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	name, err := inputval.Require("name", req.Name, inputval.MaxNameLen)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.Create(ctx, models.Club{
		Name:        name,
		Description: inputval.Sanitize(req.Description, inputval.MaxDefaultLen),
		Location:    inputval.Sanitize(req.Location, inputval.MaxNameLen),
		Website:     inputval.Sanitize(req.Website, inputval.MaxDefaultLen),
		ImageURL:    inputval.Sanitize(req.ImageURL, inputval.MaxDefaultLen),
	})
	if err != nil {
		if errors.Is(err, clubstore.ErrDuplicateClub) {
			respond.Error(w, h.Log, apperr.New(apperr.AlreadyExists, "a club with this name already exists"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to create club", err))
		return
	}

	// The founder runs the club.
	if err := h.Users.SetClub(ctx, userID, club.ID, "admin"); err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to attach founder to club", err))
		return
	}

	h.Log.Info("club registered",
		zap.String("club_id", club.ID.Hex()),
		zap.String("founder_id", userID.Hex()))
	respond.JSON(w, http.StatusCreated, toClubResponse(club))
}

// HandleGet handles GET /clubs/{clubID}. Members of the club only.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clubID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clubID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid club id"))
		return
	}
	if !authz.SameClub(r, clubID) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "you are not a member of this club"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.New(apperr.NotFound, "club not found"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to load club", err))
		return
	}
	respond.JSON(w, http.StatusOK, toClubResponse(club))
}

// HandleUpdate handles PATCH /clubs/{clubID}. Admins only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	clubID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clubID"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid club id"))
		return
	}
	if !authz.IsAdmin(r) || !authz.SameClub(r, clubID) {
		respond.Error(w, h.Log, apperr.New(apperr.PermissionDenied, "only a club admin can update the club"))
		return
	}

	var req clubRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Clubs.Update(ctx, clubID, models.Club{
		Name:        inputval.Sanitize(req.Name, inputval.MaxNameLen),
		Description: inputval.Sanitize(req.Description, inputval.MaxDefaultLen),
		Location:    inputval.Sanitize(req.Location, inputval.MaxNameLen),
		Website:     inputval.Sanitize(req.Website, inputval.MaxDefaultLen),
		ImageURL:    inputval.Sanitize(req.ImageURL, inputval.MaxDefaultLen),
	})
	if err != nil {
		if errors.Is(err, clubstore.ErrDuplicateClub) {
			respond.Error(w, h.Log, apperr.New(apperr.AlreadyExists, "a club with this name already exists"))
			return
		}
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to update club", err))
		return
	}

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Wrap(apperr.Internal, "failed to reload club", err))
		return
	}
	respond.JSON(w, http.StatusOK, toClubResponse(club))
}
