// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("events")}
}

// Create inserts a new event.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.Name = normalize.Name(ev.Name)
	ev.Attendees = nil
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// GetByID loads an event.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var ev models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// EventUpdate holds the fields an event edit may change. Pointer fields
// distinguish "leave alone" from "set to zero".
type EventUpdate struct {
	Name             *string
	Location         *string
	DistanceKM       *float64
	StartsAt         *time.Time
	Description      *string
	SignupLink       *string
	IsRecurring      *bool
	RecurringPattern *string
	RecurringEnd     *time.Time
}

// Update modifies an event's fields. The attendee list is never touched
// here; RSVP owns it.
func (s *Store) Update(ctx context.Context, id, clubID primitive.ObjectID, upd EventUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = normalize.Name(*upd.Name)
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.DistanceKM != nil {
		set["distance_km"] = *upd.DistanceKM
	}
	if upd.StartsAt != nil {
		set["starts_at"] = *upd.StartsAt
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.SignupLink != nil {
		set["signup_link"] = *upd.SignupLink
	}
	if upd.IsRecurring != nil {
		set["is_recurring"] = *upd.IsRecurring
	}
	if upd.RecurringPattern != nil {
		set["recurring_pattern"] = *upd.RecurringPattern
	}
	if upd.RecurringEnd != nil {
		set["recurring_end"] = *upd.RecurringEnd
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "club_id": clubID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an event. The club filter keeps deletes tenant-scoped.
func (s *Store) Delete(ctx context.Context, id, clubID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "club_id": clubID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByClub returns a club's events ordered by start time. When from is
// non-zero only events starting at or after it are returned.
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID, from time.Time) ([]models.Event, error) {
	filter := bson.M{"club_id": clubID}
	if !from.IsZero() {
		filter["starts_at"] = bson.M{"$gte": from}
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAttending returns events where the user appears on the attendee
// list, ordered by start time.
func (s *Store) ListAttending(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"attendees.user_id": userID},
		options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRSVP adds or removes the attendee entry for a user. Both directions
// are idempotent and keyed on user_id alone, so stale display fields in
// an existing entry can never produce a duplicate.
func (s *Store) SetRSVP(ctx context.Context, eventID primitive.ObjectID, attendee models.Attendee, attend bool) error {
	if attend {
		attendee.JoinedAt = time.Now().UTC()
		res, err := s.c.UpdateOne(ctx,
			bson.M{
				"_id":               eventID,
				"attendees.user_id": bson.M{"$ne": attendee.UserID},
			},
			bson.M{"$push": bson.M{"attendees": attendee}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Either the event is missing or the user is already on
			// the list; tell the two apart for the caller.
			if err := s.c.FindOne(ctx, bson.M{"_id": eventID}).Err(); err != nil {
				return err
			}
		}
		return nil
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"attendees": bson.M{"user_id": attendee.UserID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IsNotFound reports whether err means the event does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
