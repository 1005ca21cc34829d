package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

type RegistrationService struct {
	registrationRepo models.RegistrationRepo
	eventRepo        models.EventRepo
}

func NewRegistrationService(registrationRepo models.RegistrationRepo, eventRepo models.EventRepo) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
	}
}

// Register admits a guest to an event. The admission decision and the
// capacity claim happen atomically inside the repo.
func (rs *RegistrationService) Register(ctx context.Context, input models.RegisterForEventInput, userID uuid.UUID) (*models.Registration, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if err := models.Validate.Struct(&input); err != nil {
		return nil, fmt.Errorf("invalid registration input: %w", err)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	reg, err := rs.registrationRepo.Register(ctx, input, userID)
	return reg, mapErr(err)
}

func (rs *RegistrationService) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return models.ErrNotAuthenticated
	}
	if eventID == uuid.Nil {
		return models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	return mapErr(rs.registrationRepo.CancelRegistration(ctx, eventID, userID))
}

func (rs *RegistrationService) GetMyRegistrations(ctx context.Context, userID uuid.UUID) ([]*models.Registration, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	regs, err := rs.registrationRepo.GetMyRegistrations(ctx, userID)
	return regs, mapErr(err)
}

func (rs *RegistrationService) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	reg, err := rs.registrationRepo.GetRegistration(ctx, eventID, userID)
	return reg, mapErr(err)
}

// requireHost loads the event and checks the caller owns it.
func (rs *RegistrationService) requireHost(ctx context.Context, eventID, callerID uuid.UUID) (*models.Event, error) {
	event, err := rs.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != callerID {
		return nil, models.ErrNotAuthorized
	}
	return event, nil
}

func (rs *RegistrationService) GetEventGuests(ctx context.Context, eventID, callerID uuid.UUID) ([]*models.Registration, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	if _, err := rs.requireHost(ctx, eventID, callerID); err != nil {
		return nil, mapErr(err)
	}

	guests, err := rs.registrationRepo.GetEventGuests(ctx, eventID)
	return guests, mapErr(err)
}

// UpdateGuestStatus applies a host decision: approve, waitlist or cancel
// a guest, per the transition table. Repeat check-ins are rejected
// explicitly rather than silently absorbed.
func (rs *RegistrationService) UpdateGuestStatus(ctx context.Context, registrationID uuid.UUID, to models.RegistrationStatus, callerID uuid.UUID) (*models.Registration, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	switch to {
	case models.RegistrationApproved, models.RegistrationWaitlist,
		models.RegistrationCancelled, models.RegistrationCheckedIn:
	default:
		return nil, fmt.Errorf("invalid target status: %s", to)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	reg, err := rs.registrationRepo.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, mapErr(err)
	}
	if _, err := rs.requireHost(ctx, reg.EventID, callerID); err != nil {
		return nil, mapErr(err)
	}

	if reg.Status == models.RegistrationCheckedIn && to == models.RegistrationCheckedIn {
		return nil, models.ErrAlreadyCheckedIn
	}
	if !reg.Status.CanTransition(to) {
		return nil, models.ErrInvalidTransition
	}

	updated, err := rs.registrationRepo.UpdateStatus(ctx, registrationID, reg.Status, to)
	return updated, mapErr(err)
}

// CheckInGuest marks an approved guest as arrived and stamps
// checked_in_at.
func (rs *RegistrationService) CheckInGuest(ctx context.Context, registrationID, callerID uuid.UUID) (*models.Registration, error) {
	return rs.UpdateGuestStatus(ctx, registrationID, models.RegistrationCheckedIn, callerID)
}

func (rs *RegistrationService) SendInvitations(ctx context.Context, eventID uuid.UUID, emails []string, callerID uuid.UUID) ([]*models.Invitation, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("no emails provided")
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	if _, err := rs.requireHost(ctx, eventID, callerID); err != nil {
		return nil, mapErr(err)
	}

	now := time.Now()
	seen := make(map[string]bool, len(emails))
	invitations := make([]*models.Invitation, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			continue
		}
		if err := models.Validate.Var(email, "email"); err != nil {
			return nil, fmt.Errorf("invalid email %q", email)
		}
		seen[email] = true
		invitations = append(invitations, &models.Invitation{
			ID:        uuid.New(),
			EventID:   eventID,
			Email:     email,
			InvitedBy: callerID,
			Status:    models.InvitationPending,
			CreatedAt: now,
		})
	}
	if len(invitations) == 0 {
		return nil, fmt.Errorf("no valid emails provided")
	}

	created, err := rs.registrationRepo.CreateInvitations(ctx, invitations)
	return created, mapErr(err)
}

// ConfirmPayment and FailPayment are the two opaque signals the payment
// gateways deliver; nothing gateway-specific crosses this boundary.
func (rs *RegistrationService) ConfirmPayment(ctx context.Context, registrationID uuid.UUID, paymentIntentID string) (*models.Registration, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	reg, err := rs.registrationRepo.SetPaymentStatus(ctx, registrationID, models.PaymentPaid, paymentIntentID)
	return reg, mapErr(err)
}

func (rs *RegistrationService) FailPayment(ctx context.Context, registrationID uuid.UUID, paymentIntentID string) (*models.Registration, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	reg, err := rs.registrationRepo.SetPaymentStatus(ctx, registrationID, models.PaymentFailed, paymentIntentID)
	return reg, mapErr(err)
}
