package mailer

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

func testConfig() Config {
	return Config{
		SMTPHost: "localhost",
		SMTPPort: 1025,
		From:     "noreply@pacerhub.test",
		FromName: "PacerHub",
		BaseURL:  "https://pacerhub.test",
	}
}

func TestSend_NotConfigured(t *testing.T) {
	m := NewWithSender(Config{}, zap.NewNop(), func(...*gomail.Message) error { return nil })

	_, err := m.Send(Email{To: []string{"jane@example.com"}, Subject: "hi", TextBody: "hi"})
	if err == nil {
		t.Fatal("expected error when SMTP is not configured")
	}
	if apperr.CodeOf(err) != apperr.FailedPrecondition {
		t.Errorf("code = %q, want failed-precondition", apperr.CodeOf(err))
	}
}

func TestSend_NoRecipients(t *testing.T) {
	m := NewWithSender(testConfig(), zap.NewNop(), func(...*gomail.Message) error { return nil })

	_, err := m.Send(Email{Subject: "hi", TextBody: "hi"})
	if apperr.CodeOf(err) != apperr.InvalidArgument {
		t.Errorf("code = %q, want invalid-argument", apperr.CodeOf(err))
	}
}

func TestSend_ProviderFailure(t *testing.T) {
	m := NewWithSender(testConfig(), zap.NewNop(), func(...*gomail.Message) error {
		return errors.New("dial tcp: connection refused")
	})

	_, err := m.Send(Email{To: []string{"jane@example.com"}, Subject: "hi", TextBody: "hi"})
	if apperr.CodeOf(err) != apperr.Internal {
		t.Errorf("code = %q, want internal", apperr.CodeOf(err))
	}
}

func TestSend_AssignsEmailID(t *testing.T) {
	var sent *gomail.Message
	m := NewWithSender(testConfig(), zap.NewNop(), func(msgs ...*gomail.Message) error {
		sent = msgs[0]
		return nil
	})

	res, err := m.Send(Email{To: []string{"jane@example.com"}, Subject: "hi", TextBody: "hi", HTMLBody: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res.EmailID == "" {
		t.Error("expected a non-empty email ID")
	}
	if sent == nil {
		t.Fatal("delivery function was not called")
	}
	if got := sent.GetHeader("To"); len(got) != 1 || got[0] != "jane@example.com" {
		t.Errorf("To header = %v", got)
	}
}

func TestSendInvitation_BuildsLink(t *testing.T) {
	var sent *gomail.Message
	m := NewWithSender(testConfig(), zap.NewNop(), func(msgs ...*gomail.Message) error {
		sent = msgs[0]
		return nil
	})

	_, err := m.SendInvitation("jane@example.com", "Jane Runner", "507f1f77bcf86cd799439011_1700000000000_abcdefghij0123456789", "Morning Milers")
	if err != nil {
		t.Fatalf("SendInvitation failed: %v", err)
	}

	var buf strings.Builder
	if _, err := sent.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	// The wire form is quoted-printable: soft line breaks split the long
	// URL and "=" arrives as "=3D". Undo both before matching.
	wire := strings.NewReplacer("=\r\n", "", "=\n", "", "=3D", "=").Replace(buf.String())
	if !strings.Contains(wire, "/setup-account?token=507f1f77bcf86cd799439011_1700000000000_abcdefghij0123456789") {
		t.Error("invitation body does not contain the setup-account link")
	}
}

func TestBuildInvitationEmail(t *testing.T) {
	e := BuildInvitationEmail(InvitationEmailData{
		FullName:   "Jane",
		ClubName:   "Morning Milers",
		InviteLink: "https://pacerhub.test/setup-account?token=x",
		ExpiresIn:  "7 days",
	})

	if !strings.Contains(e.Subject, "Morning Milers") {
		t.Errorf("subject = %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "https://pacerhub.test/setup-account?token=x") {
		t.Error("text body is missing the invite link")
	}
	if !strings.Contains(e.HTMLBody, "https://pacerhub.test/setup-account?token=x") {
		t.Error("HTML body is missing the invite link")
	}
	if !strings.Contains(e.TextBody, "7 days") {
		t.Error("text body is missing the expiry window")
	}
}

func TestBuildJoinRequestEmail(t *testing.T) {
	e := BuildJoinRequestEmail(JoinRequestEmailData{
		UserName:  "Jane",
		UserEmail: "jane@example.com",
		ClubName:  "Morning Milers",
		ReviewURL: "https://pacerhub.test/join-requests/abc",
	})
	if !strings.Contains(e.TextBody, "jane@example.com") {
		t.Error("text body is missing the requester email")
	}
}

func TestBuildApprovalEmail(t *testing.T) {
	e := BuildApprovalEmail(ApprovalEmailData{
		FullName:   "Jane",
		ClubName:   "Morning Milers",
		ApprovedBy: "Pat Admin",
		ClubURL:    "https://pacerhub.test/calendar",
	})
	if !strings.Contains(e.TextBody, "Pat Admin") {
		t.Error("text body is missing the approver name")
	}
}
