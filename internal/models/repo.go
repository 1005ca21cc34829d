package models

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

// AuthRepo resolves opaque sessions into Users. On the hosted backend
// SignIn is fire-and-forget (the magic link arrives out of band, user is
// nil); the mock backend returns the user directly.
type AuthRepo interface {
	SignIn(ctx context.Context, email string) (*User, string, error)
	SignUp(ctx context.Context, email, name string) (*User, string, error)
	SignInWithGoogle(ctx context.Context, redirectTo string) (string, error)
	SignOut(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) (*Profile, error)
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvents(ctx context.Context, filters EventFilters) ([]*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	UpdateEvent(ctx context.Context, id, hostID uuid.UUID, updates map[string]any) (*Event, error)
	DeleteEvent(ctx context.Context, id, hostID uuid.UUID) error
	// TransitionStatus applies a constrained lifecycle change: the update
	// only lands when the stored status still permits it.
	TransitionStatus(ctx context.Context, id, hostID uuid.UUID, to EventStatus) (*Event, error)
}

type CalendarRepo interface {
	CreateCalendar(ctx context.Context, calendar *Calendar) (*Calendar, error)
	GetCalendars(ctx context.Context, ownerID *uuid.UUID) ([]*Calendar, error)
	GetCalendarByID(ctx context.Context, id uuid.UUID) (*Calendar, error)
	GetCalendarBySlug(ctx context.Context, slug string) (*Calendar, error)
	UpdateCalendar(ctx context.Context, id, ownerID uuid.UUID, updates map[string]any) (*Calendar, error)
	DeleteCalendar(ctx context.Context, id, ownerID uuid.UUID) error
	// Subscribe creates the subscription row and bumps subscriber_count as
	// one atomic operation; a second subscribe returns ErrAlreadySubscribed.
	Subscribe(ctx context.Context, calendarID, userID uuid.UUID) (*CalendarSubscription, error)
	Unsubscribe(ctx context.Context, calendarID, userID uuid.UUID) error
	GetSubscriptions(ctx context.Context, userID uuid.UUID) ([]*CalendarSubscription, error)
}

type RegistrationRepo interface {
	// Register runs the admission algorithm and claims a capacity slot
	// atomically with the registration insert.
	Register(ctx context.Context, input RegisterForEventInput, userID uuid.UUID) (*Registration, error)
	CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error
	GetMyRegistrations(ctx context.Context, userID uuid.UUID) ([]*Registration, error)
	GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error)
	GetEventGuests(ctx context.Context, eventID uuid.UUID) ([]*Registration, error)
	GetRegistrationByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	// UpdateStatus applies a guest transition and adjusts the event's
	// registration_count in the same operation when the change enters or
	// leaves the counting set.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to RegistrationStatus) (*Registration, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, paymentIntentID string) (*Registration, error)
	CreateInvitations(ctx context.Context, invitations []*Invitation) ([]*Invitation, error)
}

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// GetAuthenticatedClient returns a Supabase client acting under the given
// access token so row-level security applies to the caller.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}
