// internal/app/system/mailer/mailer.go
package mailer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

// Config holds SMTP settings and the base URL used in email links.
// Missing host/from are detected at first send, not at startup, so a
// deployment without email still serves everything else.
type Config struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
	FromName string
	BaseURL  string
}

// Email is one outbound message with both text and HTML bodies.
type Email struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// SendResult reports the ID assigned to a delivered message.
type SendResult struct {
	EmailID string `json:"email_id"`
}

// SendFunc delivers a built message. Overridable in tests.
type SendFunc func(m ...*gomail.Message) error

// Mailer sends transactional email over SMTP.
type Mailer struct {
	cfg  Config
	log  *zap.Logger
	send SendFunc
}

// New creates a Mailer using a gomail SMTP dialer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &Mailer{cfg: cfg, log: logger, send: d.DialAndSend}
}

// NewWithSender creates a Mailer with a custom delivery function.
func NewWithSender(cfg Config, logger *zap.Logger, send SendFunc) *Mailer {
	return &Mailer{cfg: cfg, log: logger, send: send}
}

// BaseURL returns the configured base URL for links.
func (m *Mailer) BaseURL() string { return m.cfg.BaseURL }

func (m *Mailer) configured() error {
	if m.cfg.SMTPHost == "" || m.cfg.From == "" {
		return apperr.New(apperr.FailedPrecondition, "email provider is not configured")
	}
	return nil
}

// Send delivers e and returns the assigned email ID. Provider failures
// surface as Internal errors; callers decide whether to swallow them.
func (m *Mailer) Send(e Email) (SendResult, error) {
	if err := m.configured(); err != nil {
		return SendResult{}, err
	}
	if len(e.To) == 0 {
		return SendResult{}, apperr.New(apperr.InvalidArgument, "email has no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", e.To...)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternative("text/html", e.HTMLBody)
	}

	if err := m.send(msg); err != nil {
		return SendResult{}, apperr.Wrap(apperr.Internal, "email provider error", err)
	}

	res := SendResult{EmailID: uuid.NewString()}
	m.log.Info("email sent",
		zap.Strings("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("email_id", res.EmailID))
	return res, nil
}

// SendInvitation emails an invitation link built from the wire token.
func (m *Mailer) SendInvitation(to, fullName, wireToken, clubName string) (SendResult, error) {
	e := BuildInvitationEmail(InvitationEmailData{
		FullName:   fullName,
		ClubName:   clubName,
		InviteLink: m.cfg.BaseURL + "/setup-account?token=" + wireToken,
		ExpiresIn:  "7 days",
	})
	e.To = []string{to}
	return m.Send(e)
}

// SendJoinRequestNotification tells club admins/moderators about a new
// join request.
func (m *Mailer) SendJoinRequestNotification(adminEmails []string, userName, userEmail, clubName, requestID string) (SendResult, error) {
	e := BuildJoinRequestEmail(JoinRequestEmailData{
		UserName:  userName,
		UserEmail: userEmail,
		ClubName:  clubName,
		ReviewURL: m.cfg.BaseURL + "/join-requests/" + requestID,
	})
	e.To = adminEmails
	return m.Send(e)
}

// SendApprovalConfirmation tells a requester their join request was
// approved.
func (m *Mailer) SendApprovalConfirmation(to, fullName, clubName, approvedBy string) (SendResult, error) {
	e := BuildApprovalEmail(ApprovalEmailData{
		FullName:   fullName,
		ClubName:   clubName,
		ApprovedBy: approvedBy,
		ClubURL:    m.cfg.BaseURL + "/calendar",
	})
	e.To = []string{to}
	return m.Send(e)
}
