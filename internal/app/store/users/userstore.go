package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacerhub/pacerhub/internal/app/system/normalize"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "member"|"moderator"|"admin"`)
)

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = "member"
	}
	if u.Status == "" {
		u.Status = "active"
	}

	switch u.Role {
	case "member", "moderator", "admin":
	default:
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any user has the given email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// ListByClub returns the active users of a club ordered by folded name.
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"club_id": clubID, "status": "active"},
		options.Find().SetSort(bson.D{
			{Key: "full_name_ci", Value: 1},
			{Key: "_id", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRole changes the role of a user inside the given club. The club
// filter guards against cross-club edits racing a removal.
func (s *Store) UpdateRole(ctx context.Context, userID, clubID primitive.ObjectID, role string) error {
	switch role {
	case "member", "moderator", "admin":
	default:
		return errBadRole
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "club_id": clubID},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftRemove detaches a user from their club. The account and its
// history survive; the user just can no longer act inside the club.
func (s *Store) SoftRemove(ctx context.Context, userID, clubID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "club_id": clubID},
		bson.M{
			"$unset": bson.M{"club_id": ""},
			"$set": bson.M{
				"role":       "member",
				"status":     "inactive",
				"updated_at": time.Now().UTC(),
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetClub attaches a user to a club with the given role and reactivates
// the account. Used by invitation redemption and join-request approval.
func (s *Store) SetClub(ctx context.Context, userID, clubID primitive.ObjectID, role string) error {
	switch role {
	case "member", "moderator", "admin":
	default:
		return errBadRole
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"club_id":    clubID,
			"role":       role,
			"status":     "active",
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateProfile updates the user's own editable fields.
func (s *Store) UpdateProfile(ctx context.Context, userID primitive.ObjectID, fullName string) error {
	fullName = normalize.Name(fullName)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"full_name":    fullName,
			"full_name_ci": text.Fold(fullName),
			"updated_at":   time.Now().UTC(),
		}})
	return err
}

// SetLastLogin stamps a successful sign-in. Best effort; callers ignore
// the error.
func (s *Store) SetLastLogin(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})
	return err
}

// AddToWishlist records an event on the user's wishlist. $addToSet keeps
// the operation idempotent.
func (s *Store) AddToWishlist(ctx context.Context, userID, eventID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"wishlist": eventID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveFromWishlist drops an event from the user's wishlist. Removing
// an event that is not present is a no-op.
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, eventID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": eventID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
