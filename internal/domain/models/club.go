// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club is a tenant owning members and events.
// NameCI is the case/diacritic-insensitive form used for search and the
// uniqueness index; Name itself is stored exactly as entered.
type Club struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	NameCI      string             `bson:"name_ci"` // ← always stored
	Description string             `bson:"description,omitempty"`
	Location    string             `bson:"location,omitempty"`
	Website     string             `bson:"website,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	PlanType    string             `bson:"plan_type,omitempty"` // free | premium
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}
