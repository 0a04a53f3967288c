// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents club members, moderators, and admins.
//
// NOTE:
//   - Role is meaningful only in the context of ClubID. An unaffiliated
//     user (ClubID == nil) is a plain member until a club admin says
//     otherwise.
//   - Email is stored lowercase and is unique across all users.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName     string               `bson:"full_name" json:"full_name"`
	FullNameCI   string               `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string               `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role         string               `bson:"role" json:"role"`                                   // member | moderator | admin
	Status       string               `bson:"status,omitempty" json:"status,omitempty"`           // active | inactive
	ClubID       *primitive.ObjectID  `bson:"club_id,omitempty" json:"club_id,omitempty"`
	Wishlist     []primitive.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	LastLogin time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
