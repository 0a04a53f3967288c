// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join request statuses. Approved and rejected are terminal.
const (
	JoinStatusPending  = "pending"
	JoinStatusApproved = "approved"
	JoinStatusRejected = "rejected"
)

// JoinRequest is a self-service request from an unaffiliated user to
// join a club. UserName and UserEmail are denormalized so moderators can
// review requests without a user lookup.
type JoinRequest struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id"`
	ClubID      primitive.ObjectID  `bson:"club_id"`
	UserName    string              `bson:"user_name"`
	UserEmail   string              `bson:"user_email"`
	Status      string              `bson:"status"`
	CreatedAt   time.Time           `bson:"created_at"`
	ProcessedAt *time.Time          `bson:"processed_at,omitempty"`
	ProcessedBy *primitive.ObjectID `bson:"processed_by,omitempty"`
}
