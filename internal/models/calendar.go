package models

import (
	"time"

	"github.com/google/uuid"
)

type Calendar struct {
	ID            uuid.UUID `bson:"id" json:"id"`
	OwnerID       uuid.UUID `bson:"owner_id" json:"owner_id"`
	Name          string    `bson:"name" json:"name" validate:"required,min=1"`
	Slug          string    `bson:"slug" json:"slug,omitempty"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	AvatarURL     string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CoverImageURL string    `bson:"cover_image_url,omitempty" json:"cover_image_url,omitempty"`
	Color         string    `bson:"color,omitempty" json:"color,omitempty"`
	IsPublic      bool      `bson:"is_public" json:"is_public"`

	// SubscriberCount mirrors the number of active subscription rows and
	// is adjusted in the same transaction that creates or removes them.
	SubscriberCount int `bson:"subscriber_count" json:"subscriber_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at,omitempty"`
}

// CalendarSubscription joins a user to a calendar. At most one active
// subscription exists per (user, calendar) pair.
type CalendarSubscription struct {
	ID         uuid.UUID `bson:"id" json:"id"`
	CalendarID uuid.UUID `bson:"calendar_id" json:"calendar_id"`
	UserID     uuid.UUID `bson:"user_id" json:"user_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
