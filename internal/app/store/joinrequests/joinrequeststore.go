// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
	"github.com/pacerhub/pacerhub/internal/app/system/txn"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// ErrDuplicateRequest is returned when the user already has a pending
// request for the same club. Backed by the partial unique index on
// (user_id, club_id, status=pending).
var ErrDuplicateRequest = errors.New("a pending join request for this club already exists")

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
	db    *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("join_requests"),
		users: db.Collection("users"),
		db:    db,
	}
}

// Create inserts a pending join request.
func (s *Store) Create(ctx context.Context, req models.JoinRequest) (models.JoinRequest, error) {
	req.ID = primitive.NewObjectID()
	req.Status = models.JoinStatusPending
	req.CreatedAt = time.Now().UTC()
	req.ProcessedAt = nil
	req.ProcessedBy = nil

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, ErrDuplicateRequest
		}
		return models.JoinRequest{}, err
	}
	return req, nil
}

// GetByID loads a join request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.JoinRequest, error) {
	var req models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByClub returns a club's join requests, newest first. An empty
// status returns all of them.
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID, status string) ([]models.JoinRequest, error) {
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

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HasPending reports whether the user already has a pending request for
// the club.
func (s *Store) HasPending(ctx context.Context, userID, clubID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id": userID,
		"club_id": clubID,
		"status":  models.JoinStatusPending,
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Approve attaches the requester to the club and marks the pending
// request approved, in one transaction. On deployments without
// transaction support (standalone mongod) the two writes run
// sequentially in that order, so a retry after a partial failure
// re-attaches the user and then completes the status flip.
func (s *Store) Approve(ctx context.Context, id, processedBy primitive.ObjectID) (*models.JoinRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "join request not found")
		}
		return nil, err
	}
	if req.Status != models.JoinStatusPending {
		return nil, apperr.New(apperr.FailedPrecondition, "join request has already been processed")
	}

	now := time.Now().UTC()
	err = txn.WithTransaction(ctx, s.db.Client(), func(ctx context.Context) error {
		// Attach the user first. When the transaction degrades to
		// sequential writes, a crash before the status flip leaves the
		// request pending, and the retry repeats this idempotent $set
		// instead of stranding an approved-but-unattached member.
		// A role already on the account survives approval; only an
		// empty role defaults to member.
		set := bson.M{
			"club_id":    req.ClubID,
			"status":     "active",
			"updated_at": now,
		}
		var u struct {
			Role string `bson:"role"`
		}
		if err := s.users.FindOne(ctx, bson.M{"_id": req.UserID}).Decode(&u); err != nil {
			return err
		}
		if u.Role == "" {
			set["role"] = "member"
		}
		if _, err := s.users.UpdateOne(ctx,
			bson.M{"_id": req.UserID}, bson.M{"$set": set}); err != nil {
			return err
		}

		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": id, "status": models.JoinStatusPending},
			bson.M{"$set": bson.M{
				"status":       models.JoinStatusApproved,
				"processed_at": now,
				"processed_by": processedBy,
			}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return apperr.New(apperr.FailedPrecondition, "join request has already been processed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = models.JoinStatusApproved
	req.ProcessedAt = &now
	req.ProcessedBy = &processedBy
	return req, nil
}

// Reject marks a pending request rejected. The requester's user record
// is untouched.
func (s *Store) Reject(ctx context.Context, id, processedBy primitive.ObjectID) (*models.JoinRequest, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.JoinStatusPending},
		bson.M{"$set": bson.M{
			"status":       models.JoinStatusRejected,
			"processed_at": now,
			"processed_by": processedBy,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var req models.JoinRequest
	if err := res.Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either no such request or it was already processed.
			existing, lookupErr := s.GetByID(ctx, id)
			if lookupErr == nil && existing.Status != models.JoinStatusPending {
				return nil, apperr.New(apperr.FailedPrecondition, "join request has already been processed")
			}
			return nil, apperr.New(apperr.NotFound, "join request not found")
		}
		return nil, err
	}
	return &req, nil
}
