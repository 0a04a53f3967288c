// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/invitetoken"
	"github.com/pacerhub/pacerhub/internal/app/system/normalize"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// DefaultTTL is how long a new invitation stays redeemable.
const DefaultTTL = 7 * 24 * time.Hour

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

// Create inserts a pending invitation with a fresh random token. The
// returned invitation carries the stored token; callers build the wire
// form with invitetoken.Format.
func (s *Store) Create(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	token, err := invitetoken.NewRandom()
	if err != nil {
		return models.Invitation{}, apperr.Wrap(apperr.Internal, "failed to generate invitation token", err)
	}

	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	inv.Email = normalize.Email(inv.Email)
	inv.FullName = normalize.Name(inv.FullName)
	inv.Token = token
	inv.Status = models.InviteStatusPending
	inv.CreatedAt = now
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = now.Add(DefaultTTL)
	}

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetByToken loads an invitation by its stored random token.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Verify resolves a stored token to a still-redeemable invitation.
// Unknown tokens map to not-found, past expiry to expired, and terminal
// statuses to failed-precondition. Expiry is evaluated here, lazily;
// nothing sweeps expired records.
func (s *Store) Verify(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := s.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "invitation not found")
		}
		return nil, err
	}

	if inv.Expired(time.Now().UTC()) {
		return nil, apperr.New(apperr.Expired, "invitation has expired")
	}
	if inv.Status != models.InviteStatusPending {
		return nil, apperr.New(apperr.FailedPrecondition, "invitation is no longer valid")
	}
	return inv, nil
}

// MarkAccepted transitions a pending invitation to accepted. The status
// filter makes the transition single-shot under concurrent redemptions.
func (s *Store) MarkAccepted(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteStatusPending},
		bson.M{"$set": bson.M{"status": models.InviteStatusAccepted}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Cancel marks an invitation cancelled. Cancelling an already-cancelled
// invitation is a no-op; accepted invitations cannot be cancelled.
func (s *Store) Cancel(ctx context.Context, id, clubID primitive.ObjectID) error {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "club_id": clubID}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.New(apperr.NotFound, "invitation not found")
		}
		return err
	}

	switch inv.Status {
	case models.InviteStatusCancelled:
		return nil
	case models.InviteStatusAccepted:
		return apperr.New(apperr.FailedPrecondition, "invitation has already been accepted")
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteStatusPending},
		bson.M{"$set": bson.M{"status": models.InviteStatusCancelled}})
	return err
}

// ListByClub returns a club's invitations, newest first. An empty status
// returns all of them.
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID, status string) ([]models.Invitation, error) {
	filter := bson.M{"club_id": clubID}
	if status != "" {
		filter["status"] = status
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
