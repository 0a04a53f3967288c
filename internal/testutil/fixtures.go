package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateClub creates a test club with the given name.
func (f *Fixtures) CreateClub(ctx context.Context, name string) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	club := models.Club{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Location:  "Test City",
		PlanType:  "free",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("clubs").InsertOne(ctx, club); err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}
	return club
}

// CreateUser creates a test user with the given role and optional club.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, clubID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: "password",
		Role:       role,
		Status:     "active",
		ClubID:     clubID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin in the given club.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string, clubID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin", &clubID)
}

// CreateModerator creates a test moderator in the given club.
func (f *Fixtures) CreateModerator(ctx context.Context, fullName, email string, clubID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "moderator", &clubID)
}

// CreateMember creates a test member in the given club.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string, clubID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "member", &clubID)
}

// CreateUnaffiliatedUser creates a test user with no club.
func (f *Fixtures) CreateUnaffiliatedUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "member", nil)
}

// CreateInvitation creates a pending invitation for the given email.
func (f *Fixtures) CreateInvitation(ctx context.Context, clubID primitive.ObjectID, email, fullName, role, token string, invitedBy primitive.ObjectID) models.Invitation {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		ClubID:    clubID,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		InvitedBy: invitedBy,
		Token:     token,
		Status:    models.InviteStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}

	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// CreateJoinRequest creates a pending join request for the given user.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, user models.User, clubID primitive.ObjectID) models.JoinRequest {
	f.t.Helper()

	req := models.JoinRequest{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		ClubID:    clubID,
		UserName:  user.FullName,
		UserEmail: user.Email,
		Status:    models.JoinStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("join_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}
	return req
}

// CreateEvent creates a test event in the given club.
func (f *Fixtures) CreateEvent(ctx context.Context, clubID primitive.ObjectID, name string, startsAt time.Time, createdBy models.User) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:             primitive.NewObjectID(),
		ClubID:         clubID,
		Name:           name,
		Location:       "Test Trailhead",
		DistanceKM:     5,
		StartsAt:       startsAt,
		CreatedBy:      createdBy.ID,
		CreatedByEmail: createdBy.Email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}
