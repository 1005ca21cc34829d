package models

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationWaitlist  RegistrationStatus = "waitlist"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationCheckedIn RegistrationStatus = "checked_in"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// guestTransitions is the full set of permitted guest status changes.
// checked_in and cancelled are terminal; anything not listed is an error,
// never a silent no-op.
var guestTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationPending:  {RegistrationApproved, RegistrationCancelled},
	RegistrationWaitlist: {RegistrationApproved, RegistrationCancelled},
	RegistrationApproved: {RegistrationCheckedIn, RegistrationCancelled},
}

// CanTransition reports whether a registration may move between statuses.
func (s RegistrationStatus) CanTransition(to RegistrationStatus) bool {
	for _, t := range guestTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// CountsTowardCapacity reports whether a registration in this status
// occupies a capacity slot. Pending and waitlist guests do not hold one.
func (s RegistrationStatus) CountsTowardCapacity() bool {
	return s == RegistrationApproved || s == RegistrationCheckedIn
}

type Registration struct {
	ID           uuid.UUID  `bson:"id" json:"id"`
	EventID      uuid.UUID  `bson:"event_id" json:"event_id"`
	UserID       uuid.UUID  `bson:"user_id" json:"user_id"`
	TicketTypeID *uuid.UUID `bson:"ticket_type_id,omitempty" json:"ticket_type_id,omitempty"`

	Status RegistrationStatus `bson:"status" json:"status"`

	PaymentStatus   PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentIntentID string        `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	AmountPaidCents int64         `bson:"amount_paid_cents" json:"amount_paid_cents"`

	FormResponses map[string]any `bson:"form_responses,omitempty" json:"form_responses,omitempty"`

	CheckedInAt *time.Time `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at,omitempty"`
}

type RegisterForEventInput struct {
	EventID       uuid.UUID      `json:"event_id" validate:"required"`
	TicketTypeID  *uuid.UUID     `json:"ticket_type_id,omitempty"`
	FormResponses map[string]any `json:"form_responses,omitempty"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationSent     InvitationStatus = "sent"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type Invitation struct {
	ID        uuid.UUID        `bson:"id" json:"id"`
	EventID   uuid.UUID        `bson:"event_id" json:"event_id"`
	Email     string           `bson:"email" json:"email"`
	InvitedBy uuid.UUID        `bson:"invited_by" json:"invited_by"`
	Status    InvitationStatus `bson:"status" json:"status"`
	SentAt    *time.Time       `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

// TicketType is an optional price tier attached to an event. Only its
// price participates in the registration payment flow.
type TicketType struct {
	ID                uuid.UUID  `bson:"id" json:"id"`
	EventID           uuid.UUID  `bson:"event_id" json:"event_id"`
	Name              string     `bson:"name" json:"name" validate:"required"`
	Description       string     `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents        int64      `bson:"price_cents" json:"price_cents" validate:"gte=0"`
	Currency          string     `bson:"currency" json:"currency"`
	QuantityAvailable *int       `bson:"quantity_available,omitempty" json:"quantity_available,omitempty"`
	QuantitySold      int        `bson:"quantity_sold" json:"quantity_sold"`
	MaxPerOrder       int        `bson:"max_per_order" json:"max_per_order"`
	SalesStart        *time.Time `bson:"sales_start,omitempty" json:"sales_start,omitempty"`
	SalesEnd          *time.Time `bson:"sales_end,omitempty" json:"sales_end,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
}
