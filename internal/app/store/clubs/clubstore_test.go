package clubstore_test

import (
	"errors"
	"testing"

	clubstore "github.com/pacerhub/pacerhub/internal/app/store/clubs"
	"github.com/pacerhub/pacerhub/internal/app/system/indexes"
	"github.com/pacerhub/pacerhub/internal/domain/models"
	"github.com/pacerhub/pacerhub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club, err := store.Create(ctx, models.Club{Name: "Morning Milers", Location: "Austin"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if club.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if club.PlanType != "free" {
		t.Errorf("plan_type = %q, want free", club.PlanType)
	}
	if !club.IsActive {
		t.Error("expected new club to be active")
	}
	if club.CreatedAt.IsZero() || club.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Club{Name: "Morning Milers"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same folded name, different casing.
	_, err := store.Create(ctx, models.Club{Name: "MORNING MILERS"})
	if !errors.Is(err, clubstore.ErrDuplicateClub) {
		t.Fatalf("expected ErrDuplicateClub, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club, err := store.Create(ctx, models.Club{Name: "Morning Milers"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, club.ID, models.Club{Description: "Easy social runs", Website: "https://milers.test"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Easy social runs" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Name != "Morning Milers" {
		t.Errorf("name changed unexpectedly: %q", got.Name)
	}
}

func TestStore_ModeratorEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	fixtures.CreateModerator(ctx, "Sam", "sam@example.com", club.ID)
	fixtures.CreateMember(ctx, "Jane", "jane@example.com", club.ID)

	other := fixtures.CreateClub(ctx, "Night Owls")
	fixtures.CreateAdmin(ctx, "Rival", "rival@example.com", other.ID)

	emails, err := store.ModeratorEmails(ctx, club.ID)
	if err != nil {
		t.Fatalf("ModeratorEmails failed: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("got %d emails, want 2: %v", len(emails), emails)
	}
	seen := map[string]bool{}
	for _, e := range emails {
		seen[e] = true
	}
	if !seen["pat@example.com"] || !seen["sam@example.com"] {
		t.Errorf("unexpected email set: %v", emails)
	}
}
