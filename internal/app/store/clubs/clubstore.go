// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pacerhub/pacerhub/internal/domain/models"
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

var ErrDuplicateClub = errors.New("a club with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("clubs"),
		users: db.Collection("users"),
	}
}

func (s *Store) Create(ctx context.Context, club models.Club) (models.Club, error) {
	now := time.Now().UTC()
	club.ID = primitive.NewObjectID()
	club.NameCI = text.Fold(club.Name)
	if club.PlanType == "" {
		club.PlanType = "free"
	}
	club.IsActive = true
	club.CreatedAt = now
	club.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, club); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Club{}, ErrDuplicateClub
		}
		return models.Club{}, err
	}
	return club, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Club, error) {
	var club models.Club
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&club); err != nil {
		return models.Club{}, err
	}
	return club, nil
}

// Update modifies a club's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, club models.Club) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if club.Name != "" {
		set["name"] = club.Name
		set["name_ci"] = text.Fold(club.Name)
	}
	if club.Description != "" {
		set["description"] = club.Description
	}
	if club.Location != "" {
		set["location"] = club.Location
	}
	if club.Website != "" {
		set["website"] = club.Website
	}
	if club.ImageURL != "" {
		set["image_url"] = club.ImageURL
	}
	if club.PlanType != "" {
		set["plan_type"] = club.PlanType
	}

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateClub
		}
		return err
	}
	return nil
}

// ModeratorEmails returns the emails of a club's active admins and
// moderators, used to notify reviewers about new join requests.
func (s *Store) ModeratorEmails(ctx context.Context, clubID primitive.ObjectID) ([]string, error) {
	cur, err := s.users.Find(ctx, bson.M{
		"club_id": clubID,
		"role":    bson.M{"$in": []string{"admin", "moderator"}},
		"status":  "active",
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var emails []string
	for cur.Next(ctx) {
		var u struct {
			Email string `bson:"email"`
		}
		if err := cur.Decode(&u); err != nil {
			continue
		}
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, cur.Err()
}
