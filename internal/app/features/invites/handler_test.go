package invites_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/pacerhub/pacerhub/internal/app/features/invites"
	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	"github.com/pacerhub/pacerhub/internal/app/store/emailrate"
	invitationstore "github.com/pacerhub/pacerhub/internal/app/store/invitations"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/invitetoken"
	"github.com/pacerhub/pacerhub/internal/app/system/mailer"
	"github.com/pacerhub/pacerhub/internal/domain/models"
	"github.com/pacerhub/pacerhub/internal/testutil"
)

var errSMTPDown = errors.New("smtp connection refused")

// pastTime returns a timestamp safely before any fixture's creation.
func pastTime() time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	handler  *invites.Handler
	fixtures *testutil.Fixtures
	sent     *[]*gomail.Message
	sendErr  *error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	var sent []*gomail.Message
	var sendErr error
	m := mailer.NewWithSender(mailer.Config{
		SMTPHost: "smtp.test",
		SMTPPort: 587,
		From:     "noreply@pacerhub.test",
		FromName: "PacerHub",
		BaseURL:  "https://app.pacerhub.test",
	}, zap.NewNop(), func(msgs ...*gomail.Message) error {
		if sendErr != nil {
			return sendErr
		}
		sent = append(sent, msgs...)
		return nil
	})

	sessions, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "pacerhub_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	h := invites.NewHandler(
		invitationstore.New(db),
		userstore.New(db),
		clubstore.New(db),
		emailrate.New(db),
		m,
		sessions,
		zap.NewNop(),
	)
	return &testEnv{
		handler:  h,
		fixtures: testutil.NewFixtures(t, db),
		sent:     &sent,
		sendErr:  &sendErr,
	}
}

func TestHandleCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email":     "Runner@Example.com",
		"full_name": "Pat Runner",
		"role":      "member",
	})
	req = testutil.WithUser(req, testutil.ModeratorUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		Invitation struct {
			Email  string `json:"email"`
			Status string `json:"status"`
			Token  string `json:"token"`
		} `json:"invitation"`
		EmailSent bool `json:"email_sent"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.Invitation.Email != "runner@example.com" {
		t.Errorf("email = %q, want normalized lowercase", resp.Invitation.Email)
	}
	if resp.Invitation.Status != models.InviteStatusPending {
		t.Errorf("status = %q, want pending", resp.Invitation.Status)
	}
	if !resp.EmailSent {
		t.Error("email_sent = false, want true")
	}
	if len(*env.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(*env.sent))
	}

	clubID, random, err := invitetoken.Parse(resp.Invitation.Token)
	if err != nil {
		t.Fatalf("returned token does not parse: %v", err)
	}
	if clubID != club.ID {
		t.Error("token club segment does not match the inviting club")
	}
	if len(random) != invitetoken.RandomLen {
		t.Errorf("random part length = %d, want %d", len(random), invitetoken.RandomLen)
	}
}

func TestHandleCreate_MemberDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "x@example.com", "full_name": "X",
	})
	req = testutil.WithUser(req, testutil.MemberUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertErrorCode(t, "permission-denied")
}

func TestHandleCreate_EmailAlreadyRegistered(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	env.fixtures.CreateMember(ctx, "Taken", "taken@example.com", club.ID)

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "Taken@Example.com", "full_name": "Taken Again",
	})
	req = testutil.WithUser(req, testutil.AdminUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertErrorCode(t, "already-exists")
	if len(*env.sent) != 0 {
		t.Errorf("expected no email, got %d", len(*env.sent))
	}
}

func TestHandleCreate_ModeratorCannotInviteAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "x@example.com", "full_name": "X", "role": "admin",
	})
	req = testutil.WithUser(req, testutil.ModeratorUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertErrorCode(t, "permission-denied")

	// Only admins hand out elevated roles.
	req = testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "x@example.com", "full_name": "X", "role": "admin",
	})
	req = testutil.WithUser(req, testutil.AdminUser(club.ID))
	rec = testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusCreated)
}

func TestHandleCreate_EmailFailureStillCreates(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	*env.sendErr = errSMTPDown

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "x@example.com", "full_name": "X",
	})
	req = testutil.WithUser(req, testutil.AdminUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		EmailSent bool `json:"email_sent"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.EmailSent {
		t.Error("email_sent = true after provider failure")
	}

	n, err := env.fixtures.DB().Collection("invitations").CountDocuments(ctx, bson.M{"club_id": club.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("invitation count = %d, want 1 despite send failure", n)
	}
}

func TestHandleCreate_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	actor := testutil.AdminUser(club.ID)

	rate := emailrate.New(env.fixtures.DB())
	for i := 0; i < emailrate.Limit; i++ {
		if err := rate.Allow(ctx, actor.ID); err != nil {
			t.Fatalf("prefill %d: %v", i, err)
		}
	}

	req := testutil.NewJSONRequest("POST", "/invitations", map[string]string{
		"email": "x@example.com", "full_name": "X",
	})
	req = testutil.WithUser(req, actor)
	rec := testutil.NewRecorder()
	env.handler.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertErrorCode(t, "resource-exhausted")
}

func TestHandleVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewRequest("GET", "/invitations/verify?token="+wire)
	rec := testutil.NewRecorder()
	env.handler.HandleVerify(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		ClubName string `json:"club_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.ClubName != "Morning Milers" {
		t.Errorf("club_name = %q", resp.ClubName)
	}
	if resp.Email != "pat@example.com" || resp.Role != "member" {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestHandleVerify_BadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")

	cases := []struct {
		name  string
		token string
		code  string
	}{
		{"malformed", "not-a-token", "invalid-argument"},
		{"unknown random", invitetoken.Format(club.ID, pastTime(), "ccccccccccdddddddddd"), "not-found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewRequest("GET", "/invitations/verify?token="+tc.token)
			rec := testutil.NewRecorder()
			env.handler.HandleVerify(rec, req)
			rec.AssertErrorCode(t, tc.code)
		})
	}
}

func TestHandleVerify_WrongClubSegment(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	other := env.fixtures.CreateClub(ctx, "Night Owls")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	// A valid random part paired with another club's ID must not resolve.
	forged := invitetoken.Format(other.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewRequest("GET", "/invitations/verify?token="+forged)
	rec := testutil.NewRecorder()
	env.handler.HandleVerify(rec, req)

	rec.AssertErrorCode(t, "not-found")
}

func TestHandleVerify_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	_, err := env.fixtures.DB().Collection("invitations").UpdateOne(ctx,
		bson.M{"_id": inv.ID},
		bson.M{"$set": bson.M{"expires_at": pastTime()}})
	if err != nil {
		t.Fatalf("rewind expiry: %v", err)
	}

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewRequest("GET", "/invitations/verify?token="+wire)
	rec := testutil.NewRecorder()
	env.handler.HandleVerify(rec, req)

	rec.AssertStatus(t, http.StatusGone)
	rec.AssertErrorCode(t, "expired")
}

func TestHandleRedeem(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "moderator", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewJSONRequest("POST", "/invitations/redeem", map[string]string{
		"token":     wire,
		"email":     "Pat@Example.com",
		"full_name": "Pat Painter",
		"password":  "longenough",
	})
	rec := testutil.NewRecorder()
	env.handler.HandleRedeem(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var user models.User
	if err := env.fixtures.DB().Collection("users").FindOne(ctx, bson.M{"email": "pat@example.com"}).Decode(&user); err != nil {
		t.Fatalf("redeemed user not found: %v", err)
	}
	if user.Role != "moderator" {
		t.Errorf("role = %q, want the invited role", user.Role)
	}
	if user.ClubID == nil || *user.ClubID != club.ID {
		t.Error("redeemed user not attached to the inviting club")
	}

	var stored models.Invitation
	if err := env.fixtures.DB().Collection("invitations").FindOne(ctx, bson.M{"_id": inv.ID}).Decode(&stored); err != nil {
		t.Fatalf("invitation lookup: %v", err)
	}
	if stored.Status != models.InviteStatusAccepted {
		t.Errorf("invitation status = %q, want accepted", stored.Status)
	}

	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set after redemption")
	}
}

func TestHandleRedeem_WrongEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewJSONRequest("POST", "/invitations/redeem", map[string]string{
		"token":     wire,
		"email":     "intruder@example.com",
		"full_name": "Intruder",
		"password":  "longenough",
	})
	rec := testutil.NewRecorder()
	env.handler.HandleRedeem(rec, req)

	rec.AssertErrorCode(t, "permission-denied")

	// Nothing changed server side.
	var stored models.Invitation
	if err := env.fixtures.DB().Collection("invitations").FindOne(ctx, bson.M{"_id": inv.ID}).Decode(&stored); err != nil {
		t.Fatalf("invitation lookup: %v", err)
	}
	if stored.Status != models.InviteStatusPending {
		t.Errorf("invitation status = %q, want still pending", stored.Status)
	}
}

func TestHandleRedeem_ExistingUnaffiliatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	existing := env.fixtures.CreateUnaffiliatedUser(ctx, "Pat", "pat@example.com")
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewJSONRequest("POST", "/invitations/redeem", map[string]string{
		"token":     wire,
		"email":     "pat@example.com",
		"full_name": "Pat",
		"password":  "longenough",
	})
	rec := testutil.NewRecorder()
	env.handler.HandleRedeem(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var user models.User
	if err := env.fixtures.DB().Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("user lookup: %v", err)
	}
	if user.ClubID == nil || *user.ClubID != club.ID {
		t.Error("existing account not attached to the inviting club")
	}
	if user.Status != "active" {
		t.Errorf("status = %q, want active", user.Status)
	}
}

func TestHandleRedeem_RetryAfterPartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "moderator", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	// A crash between creating the account and marking the invitation
	// accepted leaves the member attached while the invitation is still
	// pending. Reproduce that state, then redeem again.
	env.fixtures.CreateUser(ctx, "Pat", "pat@example.com", "moderator", &club.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewJSONRequest("POST", "/invitations/redeem", map[string]string{
		"token":     wire,
		"email":     "pat@example.com",
		"full_name": "Pat",
		"password":  "longenough",
	})
	rec := testutil.NewRecorder()
	env.handler.HandleRedeem(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var stored models.Invitation
	if err := env.fixtures.DB().Collection("invitations").FindOne(ctx, bson.M{"_id": inv.ID}).Decode(&stored); err != nil {
		t.Fatalf("invitation lookup: %v", err)
	}
	if stored.Status != models.InviteStatusAccepted {
		t.Errorf("status = %q, want accepted", stored.Status)
	}
}

func TestHandleRedeem_ExistingAffiliatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	other := env.fixtures.CreateClub(ctx, "Night Owls")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	env.fixtures.CreateMember(ctx, "Pat", "pat@example.com", other.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	wire := invitetoken.Format(club.ID, inv.CreatedAt, inv.Token)
	req := testutil.NewJSONRequest("POST", "/invitations/redeem", map[string]string{
		"token":     wire,
		"email":     "pat@example.com",
		"full_name": "Pat",
		"password":  "longenough",
	})
	rec := testutil.NewRecorder()
	env.handler.HandleRedeem(rec, req)

	rec.AssertErrorCode(t, "already-exists")
}

func TestHandleCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	cancelOnce := func() *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("POST", "/invitations/"+inv.ID.Hex()+"/cancel", testutil.AdminUser(club.ID))
		req = testutil.WithChiURLParam(req, "invitationID", inv.ID.Hex())
		rec := testutil.NewRecorder()
		env.handler.HandleCancel(rec, req)
		return rec
	}

	cancelOnce().AssertStatus(t, http.StatusOK)
	// Repeating the cancel is a quiet success.
	cancelOnce().AssertStatus(t, http.StatusOK)

	var stored models.Invitation
	if err := env.fixtures.DB().Collection("invitations").FindOne(ctx, bson.M{"_id": inv.ID}).Decode(&stored); err != nil {
		t.Fatalf("invitation lookup: %v", err)
	}
	if stored.Status != models.InviteStatusCancelled {
		t.Errorf("status = %q, want cancelled", stored.Status)
	}
}

func TestHandleCancel_OtherClub(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	other := env.fixtures.CreateClub(ctx, "Night Owls")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	inv := env.fixtures.CreateInvitation(ctx, club.ID, "pat@example.com", "Pat", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)

	req := testutil.NewAuthenticatedRequest("POST", "/invitations/"+inv.ID.Hex()+"/cancel", testutil.AdminUser(other.ID))
	req = testutil.WithChiURLParam(req, "invitationID", inv.ID.Hex())
	rec := testutil.NewRecorder()
	env.handler.HandleCancel(rec, req)

	rec.AssertErrorCode(t, "not-found")
}

func TestHandleList(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := env.fixtures.CreateClub(ctx, "Morning Milers")
	admin := env.fixtures.CreateAdmin(ctx, "Ada", "ada@example.com", club.ID)
	env.fixtures.CreateInvitation(ctx, club.ID, "a@example.com", "A", "member", "aaaaaaaaaabbbbbbbbbb", admin.ID)
	cancelled := env.fixtures.CreateInvitation(ctx, club.ID, "b@example.com", "B", "member", "ccccccccccdddddddddd", admin.ID)

	store := invitationstore.New(env.fixtures.DB())
	if err := store.Cancel(ctx, cancelled.ID, club.ID); err != nil {
		t.Fatalf("cancel fixture: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/invitations?status=pending", testutil.ModeratorUser(club.ID))
	rec := testutil.NewRecorder()
	env.handler.HandleList(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Invitations []struct {
			Email string `json:"email"`
			Token string `json:"token"`
		} `json:"invitations"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Invitations) != 1 {
		t.Fatalf("got %d pending invitations, want 1", len(resp.Invitations))
	}
	if resp.Invitations[0].Email != "a@example.com" {
		t.Errorf("email = %q", resp.Invitations[0].Email)
	}
	if resp.Invitations[0].Token != "" {
		t.Error("list leaked a raw token")
	}

	if strings.Contains(rec.Body.String(), "aaaaaaaaaabbbbbbbbbb") {
		t.Error("response body contains a stored token")
	}
}
