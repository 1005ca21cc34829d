package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `bson:"id" json:"id"`
	Email     string    `bson:"email" json:"email" validate:"required,email"`
	Name      string    `bson:"name" json:"name,omitempty"`
	AvatarURL string    `bson:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Profile is the public-facing profile row kept alongside the auth user.
type Profile struct {
	ID         uuid.UUID `bson:"id" json:"id"`
	Email      string    `bson:"email" json:"email"`
	Name       string    `bson:"name" json:"name,omitempty"`
	AvatarURL  string    `bson:"avatar_url" json:"avatar_url,omitempty"`
	Bio        string    `bson:"bio" json:"bio,omitempty"`
	Website    string    `bson:"website" json:"website,omitempty"`
	Location   string    `bson:"location" json:"location,omitempty"`
	Timezone   string    `bson:"timezone" json:"timezone,omitempty"`
	IsVerified bool      `bson:"is_verified" json:"is_verified"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at,omitempty"`
}
