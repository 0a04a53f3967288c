// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS
// ports, TLS, logging, CORS, body limits). AppConfig is everything
// specific to PacerHub: the database, sessions, email, and OAuth.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// BaseURL is the server's own externally reachable URL, used for
	// OAuth callbacks and the links embedded in emails.
	BaseURL string
	// FrontendURL is where browser redirects land after OAuth.
	FrontendURL string

	// Google OAuth configuration. Both empty disables Google sign-in.
	GoogleClientID     string
	GoogleClientSecret string
}
