package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryAll is the category filter value meaning "any category"
const CategoryAll = "all"

// Image references an asset held by the asset store
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// Event represents a promotional event shown on the site
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Date        time.Time          `bson:"date" json:"date"`
	Featured    bool               `bson:"featured" json:"featured"`
	Order       int                `bson:"order" json:"order"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Image       Image              `bson:"image" json:"image"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateEventRequest holds the fields of a new event.
// IsActive defaults to true when nil.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,max=5000"`
	Category    string    `json:"category" validate:"required,max=100,ne=all"`
	Date        time.Time `json:"date" validate:"required"`
	Featured    bool      `json:"featured"`
	Order       int       `json:"order"`
	IsActive    *bool     `json:"isActive"`
}

// UpdateEventRequest holds a partial event update; nil fields are left unchanged
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Category    *string    `json:"category" validate:"omitempty,max=100,ne=all"`
	Date        *time.Time `json:"date"`
	Featured    *bool      `json:"featured"`
	Order       *int       `json:"order"`
	IsActive    *bool      `json:"isActive"`
}

// EventQuery holds the raw list filters taken from the query string
type EventQuery struct {
	Category string
	Featured string
	IsActive string
}

// EventFilter is the normalized list filter passed to the repository.
// Empty Category and nil Featured mean "no filter".
type EventFilter struct {
	Category string
	Featured *bool
	IsActive bool
}
