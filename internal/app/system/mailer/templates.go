// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// InvitationEmailData holds data for invitation email templates.
type InvitationEmailData struct {
	FullName   string
	ClubName   string
	InviteLink string
	ExpiresIn  string // e.g., "7 days"
}

// BuildInvitationEmail creates an invitation email with both HTML and
// text bodies. To is set by the caller.
func BuildInvitationEmail(data InvitationEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("You're invited to join %s", data.ClubName),
		TextBody: buildInvitationText(data),
		HTMLBody: renderHTML("invitation", invitationHTMLTemplate, data),
	}
}

func buildInvitationText(data InvitationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.FullName))
	buf.WriteString(fmt.Sprintf("You have been invited to join %s.\n\n", data.ClubName))
	buf.WriteString("Set up your account here:\n")
	buf.WriteString(data.InviteLink + "\n\n")
	buf.WriteString(fmt.Sprintf("This invitation expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you were not expecting this invitation, you can safely ignore this email.\n")
	return buf.String()
}

// JoinRequestEmailData holds data for the admin notification sent when
// someone asks to join a club.
type JoinRequestEmailData struct {
	UserName  string
	UserEmail string
	ClubName  string
	ReviewURL string
}

// BuildJoinRequestEmail creates the notification sent to club admins
// and moderators.
func BuildJoinRequestEmail(data JoinRequestEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("New join request for %s", data.ClubName),
		TextBody: buildJoinRequestText(data),
		HTMLBody: renderHTML("joinrequest", joinRequestHTMLTemplate, data),
	}
}

func buildJoinRequestText(data JoinRequestEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s (%s) has asked to join %s.\n\n", data.UserName, data.UserEmail, data.ClubName))
	buf.WriteString("Review the request here:\n")
	buf.WriteString(data.ReviewURL + "\n")
	return buf.String()
}

// ApprovalEmailData holds data for the confirmation sent to a requester
// whose join request was approved.
type ApprovalEmailData struct {
	FullName   string
	ClubName   string
	ApprovedBy string
	ClubURL    string
}

// BuildApprovalEmail creates the approval confirmation email.
func BuildApprovalEmail(data ApprovalEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Welcome to %s", data.ClubName),
		TextBody: buildApprovalText(data),
		HTMLBody: renderHTML("approval", approvalHTMLTemplate, data),
	}
}

func buildApprovalText(data ApprovalEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.FullName))
	buf.WriteString(fmt.Sprintf("%s approved your request to join %s.\n\n", data.ApprovedBy, data.ClubName))
	buf.WriteString("See the club calendar here:\n")
	buf.WriteString(data.ClubURL + "\n")
	return buf.String()
}

func renderHTML(name, tmpl string, data any) string {
	t := template.Must(template.New(name).Parse(tmpl))
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

const invitationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Invitation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #16a34a;">{{.ClubName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.FullName}}, you have been invited to join {{.ClubName}}.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.InviteLink}}" style="display: inline-block; padding: 14px 32px; background-color: #16a34a; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Set Up Account
                    </a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                This invitation expires in {{.ExpiresIn}}.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                If you were not expecting this invitation, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const joinRequestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>New Join Request</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                <strong>{{.UserName}}</strong> ({{.UserEmail}}) has asked to join {{.ClubName}}.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.ReviewURL}}" style="display: inline-block; padding: 14px 32px; background-color: #16a34a; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Review Request
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const approvalHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.FullName}}, {{.ApprovedBy}} approved your request to join {{.ClubName}}. Welcome!
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.ClubURL}}" style="display: inline-block; padding: 14px 32px; background-color: #16a34a; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      View Calendar
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
