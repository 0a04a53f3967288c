// internal/app/features/joinrequests/handler.go
package joinrequests

import (
	"time"

	"go.uber.org/zap"

	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	"github.com/pacerhub/pacerhub/internal/app/store/emailrate"
	joinrequeststore "github.com/pacerhub/pacerhub/internal/app/store/joinrequests"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/mailer"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Handler covers the join-request lifecycle: an unaffiliated runner asks
// to join a club, and that club's admins or moderators approve or reject.
type Handler struct {
	Requests  *joinrequeststore.Store
	Users     *userstore.Store
	Clubs     *clubstore.Store
	EmailRate *emailrate.Store
	Mailer    *mailer.Mailer
	Log       *zap.Logger
}

func NewHandler(
	requests *joinrequeststore.Store,
	users *userstore.Store,
	clubs *clubstore.Store,
	emailRate *emailrate.Store,
	m *mailer.Mailer,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Requests:  requests,
		Users:     users,
		Clubs:     clubs,
		EmailRate: emailRate,
		Mailer:    m,
		Log:       logger,
	}
}

type joinRequestResponse struct {
	ID          string `json:"id"`
	ClubID      string `json:"club_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

func toJoinRequestResponse(req *models.JoinRequest) joinRequestResponse {
	resp := joinRequestResponse{
		ID:        req.ID.Hex(),
		ClubID:    req.ClubID.Hex(),
		UserID:    req.UserID.Hex(),
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Status:    req.Status,
		CreatedAt: req.CreatedAt.UTC().Format(time.RFC3339),
	}
	if req.ProcessedAt != nil {
		resp.ProcessedAt = req.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
