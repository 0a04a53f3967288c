// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.MailSMTPHost == "" {
		logger.Warn("mail_smtp_host is not set; invitation and notification emails will fail until it is configured")
	}
	if appCfg.GoogleClientID == "" {
		logger.Info("google sign-in disabled (no google_client_id)")
	}
	return nil
}
