package userstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacerhub/pacerhub/internal/app/system/auth"
	"github.com/pacerhub/pacerhub/internal/app/system/normalize"
	"github.com/pacerhub/pacerhub/internal/app/system/timeouts"
	"github.com/pacerhub/pacerhub/internal/domain/models"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each
// request. Role and club membership always come from the database, never
// from the session, so permission changes take effect on the next request.
type Fetcher struct {
	users *mongo.Collection
	clubs *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users: db.Collection("users"),
		clubs: db.Collection("clubs"),
	}
}

// FetchUser retrieves a user by ID and returns nil if the user is not
// found, inactive, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
		"club_id":   1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	if normalize.Status(u.Status) == "inactive" {
		return nil
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  normalize.Role(u.Role),
	}

	if u.ClubID != nil {
		su.ClubID = u.ClubID.Hex()

		var club models.Club
		clubProj := options.FindOne().SetProjection(bson.M{"name": 1})
		if err := f.clubs.FindOne(ctx, bson.M{"_id": u.ClubID}, clubProj).Decode(&club); err == nil {
			su.ClubName = club.Name
		}
		// Club name is display only; a failed fetch leaves it empty.
	}

	return su
}
