// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendee is one entry in an event's attendee list. Entries are keyed
// by UserID: RSVP add/remove operate on UserID alone, so drift in the
// denormalized display fields can never produce duplicates.
type Attendee struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"full_name" json:"full_name"`
	ClubName string             `bson:"club_name,omitempty" json:"club_name,omitempty"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

// Event is a scheduled club run.
type Event struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID         primitive.ObjectID `bson:"club_id" json:"club_id"`
	Name           string             `bson:"name" json:"name"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	DistanceKM     float64            `bson:"distance_km,omitempty" json:"distance_km,omitempty"`
	StartsAt       time.Time          `bson:"starts_at" json:"starts_at"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	SignupLink     string             `bson:"signup_link,omitempty" json:"signup_link,omitempty"`
	Attendees      []Attendee         `bson:"attendees,omitempty" json:"attendees,omitempty"`
	CreatedBy      primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedByEmail string             `bson:"created_by_email" json:"created_by_email"`

	IsRecurring      bool       `bson:"is_recurring,omitempty" json:"is_recurring,omitempty"`
	RecurringPattern string     `bson:"recurring_pattern,omitempty" json:"recurring_pattern,omitempty"` // weekly | biweekly | monthly
	RecurringEnd     *time.Time `bson:"recurring_end,omitempty" json:"recurring_end,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasAttendee reports whether uid is already on the attendee list.
func (e *Event) HasAttendee(uid primitive.ObjectID) bool {
	for _, a := range e.Attendees {
		if a.UserID == uid {
			return true
		}
	}
	return false
}
