package models

import (
	"time"

	"github.com/google/uuid"
)

type LocationType string

const (
	LocationPhysical LocationType = "physical"
	LocationVirtual  LocationType = "virtual"
	LocationHybrid   LocationType = "hybrid"
	LocationNone     LocationType = "none"
)

type EventVisibility string

const (
	VisibilityPublic   EventVisibility = "public"
	VisibilityPrivate  EventVisibility = "private"
	VisibilityUnlisted EventVisibility = "unlisted"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// EventTheme is a free-form visual token chosen by the host.
type EventTheme struct {
	Gradient string `bson:"gradient,omitempty" json:"gradient,omitempty"`
	Color    string `bson:"color,omitempty" json:"color,omitempty"`
}

type Event struct {
	ID         uuid.UUID  `bson:"id" json:"id"`
	HostID     uuid.UUID  `bson:"host_id" json:"host_id"`
	CalendarID *uuid.UUID `bson:"calendar_id,omitempty" json:"calendar_id,omitempty"`

	Title       string `bson:"title" json:"title" validate:"required,min=1"`
	Slug        string `bson:"slug" json:"slug,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	StartDate time.Time  `bson:"start_date" json:"start_date" validate:"required"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Timezone  string     `bson:"timezone,omitempty" json:"timezone,omitempty"`

	LocationType    LocationType `bson:"location_type" json:"location_type" validate:"required,oneof=physical virtual hybrid none"`
	LocationName    string       `bson:"location_name,omitempty" json:"location_name,omitempty"`
	LocationAddress string       `bson:"location_address,omitempty" json:"location_address,omitempty"`
	LocationURL     string       `bson:"location_url,omitempty" json:"location_url,omitempty"`

	CoverImageURL string      `bson:"cover_image_url,omitempty" json:"cover_image_url,omitempty"`
	Theme         *EventTheme `bson:"theme,omitempty" json:"theme,omitempty"`

	// Capacity nil means unlimited.
	Capacity        *int            `bson:"capacity,omitempty" json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Visibility      EventVisibility `bson:"visibility" json:"visibility" validate:"required,oneof=public private unlisted"`
	RequireApproval bool            `bson:"require_approval" json:"require_approval"`
	AllowWaitlist   bool            `bson:"allow_waitlist" json:"allow_waitlist"`

	IsPaid     bool   `bson:"is_paid" json:"is_paid"`
	PriceCents int64  `bson:"price_cents" json:"price_cents" validate:"gte=0"`
	Currency   string `bson:"currency,omitempty" json:"currency,omitempty"`

	Status EventStatus `bson:"status" json:"status"`

	// RegistrationCount counts approved and checked-in guests only.
	RegistrationCount int `bson:"registration_count" json:"registration_count"`
	ViewCount         int `bson:"view_count" json:"view_count"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at,omitempty"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
}

// CanTransition reports whether the event lifecycle permits moving from
// one status to another. Nothing ever returns to draft, and completed is
// only ever derived from the passage of the end date.
func (s EventStatus) CanTransition(to EventStatus) bool {
	switch s {
	case EventDraft:
		return to == EventPublished
	case EventPublished:
		return to == EventCancelled || to == EventCompleted
	default:
		return false
	}
}

// EffectiveStatus derives completed from the clock rather than a stored
// mutation: a published event whose end date (or start date, when no end
// is set) has passed reads as completed.
func (e *Event) EffectiveStatus(now time.Time) EventStatus {
	if e.Status != EventPublished {
		return e.Status
	}
	end := e.StartDate
	if e.EndDate != nil {
		end = *e.EndDate
	}
	if end.Before(now) {
		return EventCompleted
	}
	return EventPublished
}

// EventFilters compose on getEvents; zero values mean "no constraint".
type EventFilters struct {
	HostID       *uuid.UUID
	CalendarID   *uuid.UUID
	Status       EventStatus
	Visibility   EventVisibility
	LocationType LocationType
	StartAfter   *time.Time
	StartBefore  *time.Time
	Search       string
	Limit        int
	Offset       int
}
