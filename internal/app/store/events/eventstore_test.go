package eventstore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	eventstore "github.com/pacerhub/pacerhub/internal/app/store/events"
	"github.com/pacerhub/pacerhub/internal/domain/models"
	"github.com/pacerhub/pacerhub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)

	ev, err := store.Create(ctx, models.Event{
		ClubID:         club.ID,
		Name:           "  Saturday Long Run ",
		Location:       "River Trail",
		DistanceKM:     16,
		StartsAt:       time.Now().UTC().Add(48 * time.Hour),
		CreatedBy:      admin.ID,
		CreatedByEmail: admin.Email,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ev.Name != "Saturday Long Run" {
		t.Errorf("name not trimmed: %q", ev.Name)
	}
	if len(ev.Attendees) != 0 {
		t.Error("expected a fresh event to have no attendees")
	}
}

func TestStore_SetRSVP_IdempotentAdd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	member := fixtures.CreateMember(ctx, "Jane", "jane@example.com", club.ID)
	ev := fixtures.CreateEvent(ctx, club.ID, "Tempo Tuesday", time.Now().UTC().Add(24*time.Hour), admin)

	att := models.Attendee{
		UserID:   member.ID,
		Email:    member.Email,
		FullName: member.FullName,
		ClubName: club.Name,
	}

	if err := store.SetRSVP(ctx, ev.ID, att, true); err != nil {
		t.Fatalf("first RSVP failed: %v", err)
	}

	// Second add with drifted display fields must not duplicate the entry.
	att.FullName = "Jane R."
	if err := store.SetRSVP(ctx, ev.ID, att, true); err != nil {
		t.Fatalf("second RSVP failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Attendees) != 1 {
		t.Fatalf("got %d attendees, want 1", len(got.Attendees))
	}
	if got.Attendees[0].UserID != member.ID {
		t.Errorf("unexpected attendee %v", got.Attendees[0].UserID)
	}
	// The original entry wins; the drifted retry is a no-op.
	if got.Attendees[0].FullName != "Jane" {
		t.Errorf("attendee name = %q, want the original entry", got.Attendees[0].FullName)
	}
}

func TestStore_SetRSVP_RemoveIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	member := fixtures.CreateMember(ctx, "Jane", "jane@example.com", club.ID)
	ev := fixtures.CreateEvent(ctx, club.ID, "Tempo Tuesday", time.Now().UTC().Add(24*time.Hour), admin)

	att := models.Attendee{UserID: member.ID, Email: member.Email, FullName: member.FullName}
	if err := store.SetRSVP(ctx, ev.ID, att, true); err != nil {
		t.Fatalf("RSVP add failed: %v", err)
	}

	if err := store.SetRSVP(ctx, ev.ID, att, false); err != nil {
		t.Fatalf("RSVP remove failed: %v", err)
	}
	// Removing an absent attendee is a no-op, not an error.
	if err := store.SetRSVP(ctx, ev.ID, att, false); err != nil {
		t.Fatalf("second RSVP remove failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Attendees) != 0 {
		t.Fatalf("got %d attendees, want 0", len(got.Attendees))
	}
}

func TestStore_SetRSVP_MissingEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	att := models.Attendee{UserID: primitive.NewObjectID()}
	err := store.SetRSVP(ctx, primitive.NewObjectID(), att, true)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Update_ScopedToClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	other := fixtures.CreateClub(ctx, "Night Owls")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	ev := fixtures.CreateEvent(ctx, club.ID, "Tempo Tuesday", time.Now().UTC().Add(24*time.Hour), admin)

	name := "Hill Repeats"
	err := store.Update(ctx, ev.ID, other.ID, eventstore.EventUpdate{Name: &name})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments for cross-club update, got %v", err)
	}

	if err := store.Update(ctx, ev.ID, club.ID, eventstore.EventUpdate{Name: &name}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Hill Repeats" {
		t.Errorf("name = %q, want Hill Repeats", got.Name)
	}
}

func TestStore_ListByClub_OrderedAndFiltered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)

	now := time.Now().UTC()
	fixtures.CreateEvent(ctx, club.ID, "Past Run", now.Add(-48*time.Hour), admin)
	late := fixtures.CreateEvent(ctx, club.ID, "Later Run", now.Add(72*time.Hour), admin)
	soon := fixtures.CreateEvent(ctx, club.ID, "Sooner Run", now.Add(24*time.Hour), admin)

	upcoming, err := store.ListByClub(ctx, club.ID, now)
	if err != nil {
		t.Fatalf("ListByClub failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("got %d events, want 2", len(upcoming))
	}
	if upcoming[0].ID != soon.ID || upcoming[1].ID != late.ID {
		t.Error("events not ordered by start time")
	}

	all, err := store.ListByClub(ctx, club.ID, time.Time{})
	if err != nil {
		t.Fatalf("ListByClub(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
}

func TestStore_ListAttending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	member := fixtures.CreateMember(ctx, "Jane", "jane@example.com", club.ID)

	a := fixtures.CreateEvent(ctx, club.ID, "Run A", time.Now().UTC().Add(24*time.Hour), admin)
	fixtures.CreateEvent(ctx, club.ID, "Run B", time.Now().UTC().Add(48*time.Hour), admin)

	att := models.Attendee{UserID: member.ID, Email: member.Email, FullName: member.FullName}
	if err := store.SetRSVP(ctx, a.ID, att, true); err != nil {
		t.Fatalf("RSVP failed: %v", err)
	}

	events, err := store.ListAttending(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListAttending failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != a.ID {
		t.Errorf("unexpected attending set: %v", events)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Morning Milers")
	admin := fixtures.CreateAdmin(ctx, "Pat", "pat@example.com", club.ID)
	ev := fixtures.CreateEvent(ctx, club.ID, "Tempo Tuesday", time.Now().UTC().Add(24*time.Hour), admin)

	if err := store.Delete(ctx, ev.ID, club.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, ev.ID, club.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
