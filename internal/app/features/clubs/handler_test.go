package clubs_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/features/clubs"
	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	userstore "github.com/pacerhub/pacerhub/internal/app/store/users"
	"github.com/pacerhub/pacerhub/internal/domain/models"
	"github.com/pacerhub/pacerhub/internal/testutil"
)

func newTestHandler(t *testing.T) (*clubs.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := clubs.NewHandler(clubstore.New(db), userstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestHandleRegister(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	founder := fixtures.CreateUnaffiliatedUser(ctx, "Jane", "jane@example.com")

	req := testutil.NewJSONRequest("POST", "/clubs", map[string]string{
		"name":     "Morning Milers",
		"location": "Austin",
	})
	req = testutil.WithUser(req, testutil.TestUser{
		ID: founder.ID.Hex(), Name: founder.FullName, Email: founder.Email, Role: "member",
	})
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		ID       string `json:"id"`
		PlanType string `json:"plan_type"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.PlanType != "free" {
		t.Errorf("plan_type = %q, want free", resp.PlanType)
	}

	// The founder becomes the club admin.
	var u models.User
	if err := fixtures.DB().Collection("users").FindOne(ctx, map[string]any{"_id": founder.ID}).Decode(&u); err != nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("founder role = %q, want admin", u.Role)
	}
	if u.ClubID == nil || u.ClubID.Hex() != resp.ID {
		t.Error("founder not attached to new club")
	}
}

func TestHandleRegister_AlreadyAffiliated(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Existing Club")
	member := fixtures.CreateMember(ctx, "Jane", "jane@example.com", club.ID)

	req := testutil.NewJSONRequest("POST", "/clubs", map[string]string{"name": "Another Club"})
	req = testutil.WithUser(req, testutil.TestUser{
		ID: member.ID.Hex(), Role: "member", ClubID: club.ID.Hex(),
	})
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, req)

	rec.AssertErrorCode(t, "failed-precondition")
}

func TestHandleGet_CrossClubDenied(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	other := fixtures.CreateClub(ctx, "Night Owls")

	req := testutil.NewAuthenticatedRequest("GET", "/clubs/"+club.ID.Hex(), testutil.MemberUser(other.ID))
	req = testutil.WithChiURLParam(req, "clubID", club.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleGet(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertErrorCode(t, "permission-denied")
}

func TestHandleGet(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewAuthenticatedRequest("GET", "/clubs/"+club.ID.Hex(), testutil.MemberUser(club.ID))
	req = testutil.WithChiURLParam(req, "clubID", club.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleGet(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Morning Milers")
}

func TestHandleUpdate_RequiresAdmin(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewJSONRequest("PATCH", "/clubs/"+club.ID.Hex(), map[string]string{"description": "x"})
	req = testutil.WithUser(req, testutil.ModeratorUser(club.ID))
	req = testutil.WithChiURLParam(req, "clubID", club.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleUpdate(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")

	req := testutil.NewJSONRequest("PATCH", "/clubs/"+club.ID.Hex(), map[string]string{
		"description": "Easy social runs",
	})
	req = testutil.WithUser(req, testutil.AdminUser(club.ID))
	req = testutil.WithChiURLParam(req, "clubID", club.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Easy social runs")
}
