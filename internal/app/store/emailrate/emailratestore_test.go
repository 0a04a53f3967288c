package emailrate_test

import (
	"testing"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pacerhub/pacerhub/internal/app/store/emailrate"
	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/indexes"
	"github.com/pacerhub/pacerhub/internal/testutil"
)

func TestStore_Allow_UnderLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailrate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < emailrate.Limit; i++ {
		if err := store.Allow(ctx, "actor-1"); err != nil {
			t.Fatalf("Allow #%d failed: %v", i+1, err)
		}
	}
}

func TestStore_Allow_OverLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailrate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < emailrate.Limit; i++ {
		if err := store.Allow(ctx, "actor-1"); err != nil {
			t.Fatalf("Allow #%d failed: %v", i+1, err)
		}
	}

	err := store.Allow(ctx, "actor-1")
	if apperr.CodeOf(err) != apperr.ResourceExhausted {
		t.Fatalf("code = %q, want resource-exhausted", apperr.CodeOf(err))
	}

	// Other actors have their own windows.
	if err := store.Allow(ctx, "actor-2"); err != nil {
		t.Fatalf("Allow for a different actor failed: %v", err)
	}
}

func TestStore_Allow_WindowReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailrate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < emailrate.Limit; i++ {
		if err := store.Allow(ctx, "actor-1"); err != nil {
			t.Fatalf("Allow #%d failed: %v", i+1, err)
		}
	}
	if err := store.Allow(ctx, "actor-1"); apperr.CodeOf(err) != apperr.ResourceExhausted {
		t.Fatalf("expected resource-exhausted, got %v", err)
	}

	// Force the window into the past instead of waiting an hour.
	_, err := db.Collection("email_rate").UpdateOne(ctx,
		bson.M{"actor": "actor-1"},
		bson.M{"$set": bson.M{"window_expires": time.Now().UTC().Add(-time.Minute)}})
	if err != nil {
		t.Fatalf("window rewind failed: %v", err)
	}

	if err := store.Allow(ctx, "actor-1"); err != nil {
		t.Fatalf("Allow after window expiry failed: %v", err)
	}

	remaining, err := store.Remaining(ctx, "actor-1")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != emailrate.Limit-1 {
		t.Errorf("remaining = %d, want %d", remaining, emailrate.Limit-1)
	}
}

func TestStore_Allow_SingleCounterPerActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailrate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if err := store.Allow(ctx, "actor-1"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}

	// A second replica losing the fresh-window race would try to insert
	// its own counter; the unique actor index must refuse it.
	_, err := db.Collection("email_rate").InsertOne(ctx, bson.M{
		"actor":          "actor-1",
		"count":          1,
		"window_expires": time.Now().UTC().Add(time.Hour),
	})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate-key error, got %v", err)
	}

	n, err := db.Collection("email_rate").CountDocuments(ctx, bson.M{"actor": "actor-1"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("counter documents = %d, want 1", n)
	}
}

func TestStore_Remaining_FreshActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := emailrate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	remaining, err := store.Remaining(ctx, "never-sent")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != emailrate.Limit {
		t.Errorf("remaining = %d, want %d", remaining, emailrate.Limit)
	}
}
