// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authgooglefeature "github.com/pacerhub/pacerhub/internal/app/features/authgoogle"
	clubsfeature "github.com/pacerhub/pacerhub/internal/app/features/clubs"
	eventsfeature "github.com/pacerhub/pacerhub/internal/app/features/events"
	healthfeature "github.com/pacerhub/pacerhub/internal/app/features/health"
	invitesfeature "github.com/pacerhub/pacerhub/internal/app/features/invites"
	joinrequestsfeature "github.com/pacerhub/pacerhub/internal/app/features/joinrequests"
	loginfeature "github.com/pacerhub/pacerhub/internal/app/features/login"
	logoutfeature "github.com/pacerhub/pacerhub/internal/app/features/logout"
	membersfeature "github.com/pacerhub/pacerhub/internal/app/features/members"
	profilefeature "github.com/pacerhub/pacerhub/internal/app/features/profile"
	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	"github.com/pacerhub/pacerhub/internal/app/store/emailrate"
	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	invitationstore "github.com/pacerhub/pacerhub/internal/app/store/invitations"
	joinrequeststore "github.com/pacerhub/pacerhub/internal/app/store/joinrequests"
	"github.com/pacerhub/pacerhub/internal/app/store/oauthstate"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/mailer"
	"github.com/pacerhub/pacerhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. The router exposes the JSON API:
// auth under /auth, then /clubs, /invitations, /join-requests, /members,
// /events, and /me, plus /health for orchestrators.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	clubs := clubstore.New(db)
	invitations := invitationstore.New(db)
	requests := joinrequeststore.New(db)
	events := eventstore.New(db)
	rate := emailrate.New(db)

	// LoadSessionUser fetches fresh user data on every request, so role
	// changes and removals take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	mail := mailer.New(mailer.Config{
		SMTPHost: appCfg.MailSMTPHost,
		SMTPPort: appCfg.MailSMTPPort,
		SMTPUser: appCfg.MailSMTPUser,
		SMTPPass: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
		BaseURL:  appCfg.FrontendURL,
	}, logger)

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Authentication.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, ratelimit.NewLoginLimiter(), logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))
	r.Mount("/auth/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, logger)))

	googleHandler := authgooglefeature.NewHandler(
		users, sessionMgr, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL,
		logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Clubs and membership.
	r.Mount("/clubs", clubsfeature.Routes(clubsfeature.NewHandler(clubs, users, logger)))
	r.Mount("/invitations", invitesfeature.Routes(
		invitesfeature.NewHandler(invitations, users, clubs, rate, mail, sessionMgr, logger)))
	r.Mount("/join-requests", joinrequestsfeature.Routes(
		joinrequestsfeature.NewHandler(requests, users, clubs, rate, mail, logger)))
	r.Mount("/members", membersfeature.Routes(membersfeature.NewHandler(users, logger)))

	// Calendar.
	r.Mount("/events", eventsfeature.Routes(eventsfeature.NewHandler(events, users, logger)))

	// The signed-in user's own account.
	r.Mount("/me", profilefeature.Routes(profilefeature.NewHandler(users, logger)))

	return r, nil
}
