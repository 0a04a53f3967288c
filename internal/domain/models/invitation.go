// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. Pending invitations additionally become invalid
// once ExpiresAt has passed; expiry is checked lazily at verification
// time, never swept.
const (
	InviteStatusPending   = "pending"
	InviteStatusAccepted  = "accepted"
	InviteStatusCancelled = "cancelled"
)

// Invitation is a bearer-token record granting one-time account creation
// with a predetermined role in a club.
//
// Token is the opaque random part only. The value that travels over the
// wire (email links, redemption calls) is the composite form produced by
// invitetoken.Format, which also encodes the club and creation time so a
// legacy consumer can recover the club without a lookup.
type Invitation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ClubID    primitive.ObjectID `bson:"club_id"`
	Email     string             `bson:"email"` // lowercase; matched case-insensitively at redemption
	FullName  string             `bson:"full_name"`
	Role      string             `bson:"role"` // member | moderator | admin
	InvitedBy primitive.ObjectID `bson:"invited_by"`
	Token     string             `bson:"token"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
}

// Expired reports whether the invitation's expiry has passed at the
// given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
