// internal/app/store/emailrate/emailratestore.go
//
// Shared counter for outbound-email quotas. Counters live in Mongo, not
// in process memory, so the quota holds across replicas and restarts.
// Expired windows are removed by the TTL index on window_expires.
package emailrate

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

const (
	// Limit is the maximum number of emails one actor may trigger per window.
	Limit = 10
	// Window is the fixed quota window, anchored at the first send.
	Window = time.Hour
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("email_rate")}
}

type counter struct {
	Actor         string    `bson:"actor"`
	Count         int       `bson:"count"`
	WindowExpires time.Time `bson:"window_expires"`
}

// Allow consumes one send from the actor's quota. It returns a
// resource-exhausted error when the actor has used up the window; the
// counter is only incremented on success.
func (s *Store) Allow(ctx context.Context, actor string) error {
	now := time.Now().UTC()

	// Increment inside a live window with headroom left.
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"actor":          actor,
			"window_expires": bson.M{"$gt": now},
			"count":          bson.M{"$lt": Limit},
		},
		bson.M{"$inc": bson.M{"count": 1}},
	).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	// No incrementable window. Either the live window is at the limit,
	// or there is no live window at all.
	var c counter
	err = s.c.FindOne(ctx, bson.M{
		"actor":          actor,
		"window_expires": bson.M{"$gt": now},
	}).Decode(&c)
	if err == nil {
		return apperr.New(apperr.ResourceExhausted, "email quota exceeded; try again later")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	// Start a fresh window. ReplaceOne with upsert also clears a stale
	// expired document the TTL monitor has not swept yet.
	_, err = s.c.ReplaceOne(ctx,
		bson.M{"actor": actor},
		counter{Actor: actor, Count: 1, WindowExpires: now.Add(Window)},
		options.Replace().SetUpsert(true))
	if wafflemongo.IsDup(err) {
		// Another replica opened the window first; the unique actor
		// index rejected ours. Consume from theirs instead.
		err = s.c.FindOneAndUpdate(ctx,
			bson.M{
				"actor":          actor,
				"window_expires": bson.M{"$gt": now},
				"count":          bson.M{"$lt": Limit},
			},
			bson.M{"$inc": bson.M{"count": 1}},
		).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.New(apperr.ResourceExhausted, "email quota exceeded; try again later")
		}
	}
	return err
}

// Remaining reports how many sends the actor has left in the current
// window. Display only; Allow is the authority.
func (s *Store) Remaining(ctx context.Context, actor string) (int, error) {
	var c counter
	err := s.c.FindOne(ctx, bson.M{
		"actor":          actor,
		"window_expires": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Limit, nil
	}
	if err != nil {
		return 0, err
	}
	if c.Count >= Limit {
		return 0, nil
	}
	return Limit - c.Count, nil
}
