package models

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func cloneRegistration(r *Registration) *Registration {
	cp := *r
	return &cp
}

// Register evaluates the admission algorithm and claims the capacity slot
// under the store mutex, so two racing guests can never both take the
// last spot.
func (m *MockRepo) Register(ctx context.Context, input RegisterForEventInput, userID uuid.UUID) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[input.EventID]
	if !ok {
		return nil, ErrNotFound
	}

	for _, existing := range m.registrations {
		if existing.EventID == input.EventID && existing.UserID == userID &&
			existing.Status != RegistrationCancelled {
			return nil, ErrAlreadyRegistered
		}
	}

	status := RegistrationApproved
	switch {
	case event.RequireApproval:
		status = RegistrationPending
	case event.Capacity != nil && event.RegistrationCount >= *event.Capacity:
		if !event.AllowWaitlist {
			return nil, ErrAtCapacity
		}
		status = RegistrationWaitlist
	}

	paymentStatus := PaymentPaid
	if event.IsPaid {
		paymentStatus = PaymentPending
	}

	now := time.Now()
	reg := &Registration{
		ID:            uuid.New(),
		EventID:       input.EventID,
		UserID:        userID,
		TicketTypeID:  input.TicketTypeID,
		Status:        status,
		PaymentStatus: paymentStatus,
		FormResponses: input.FormResponses,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.registrations[reg.ID] = reg

	if status.CountsTowardCapacity() {
		event.RegistrationCount++
	}
	return cloneRegistration(reg), nil
}

// CancelRegistration is idempotent: cancelling an already-cancelled
// registration succeeds without touching the counter again.
func (m *MockRepo) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reg *Registration
	for _, r := range m.registrations {
		if r.EventID == eventID && r.UserID == userID {
			if reg == nil || r.CreatedAt.After(reg.CreatedAt) {
				reg = r
			}
		}
	}
	if reg == nil {
		return ErrNotFound
	}
	if reg.Status == RegistrationCancelled {
		return nil
	}

	if reg.Status.CountsTowardCapacity() {
		if event, ok := m.events[eventID]; ok {
			event.RegistrationCount--
		}
	}
	reg.Status = RegistrationCancelled
	reg.UpdatedAt = time.Now()
	return nil
}

func (m *MockRepo) GetMyRegistrations(ctx context.Context, userID uuid.UUID) ([]*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regs []*Registration
	for _, r := range m.registrations {
		if r.UserID == userID && r.Status != RegistrationCancelled {
			regs = append(regs, cloneRegistration(r))
		}
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].CreatedAt.After(regs[j].CreatedAt)
	})
	return regs, nil
}

func (m *MockRepo) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *Registration
	for _, r := range m.registrations {
		if r.EventID == eventID && r.UserID == userID {
			if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneRegistration(latest), nil
}

func (m *MockRepo) GetEventGuests(ctx context.Context, eventID uuid.UUID) ([]*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var guests []*Registration
	for _, r := range m.registrations {
		if r.EventID == eventID {
			guests = append(guests, cloneRegistration(r))
		}
	}
	sort.Slice(guests, func(i, j int) bool {
		return guests[i].CreatedAt.Before(guests[j].CreatedAt)
	})
	return guests, nil
}

func (m *MockRepo) GetRegistrationByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRegistration(reg), nil
}

// UpdateStatus re-validates the transition under the mutex and keeps the
// event's registration_count in step when the change enters or leaves the
// counting set.
func (m *MockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to RegistrationStatus) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if reg.Status != from || !from.CanTransition(to) {
		return nil, ErrInvalidTransition
	}

	event := m.events[reg.EventID]
	if event != nil {
		if !from.CountsTowardCapacity() && to.CountsTowardCapacity() {
			event.RegistrationCount++
		}
		if from.CountsTowardCapacity() && !to.CountsTowardCapacity() {
			event.RegistrationCount--
		}
	}

	reg.Status = to
	now := time.Now()
	reg.UpdatedAt = now
	if to == RegistrationCheckedIn {
		reg.CheckedInAt = &now
	}
	return cloneRegistration(reg), nil
}

func (m *MockRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, paymentIntentID string) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}

	valid := (reg.PaymentStatus == PaymentPending && (status == PaymentPaid || status == PaymentFailed)) ||
		(reg.PaymentStatus == PaymentPaid && status == PaymentRefunded)
	if !valid {
		return nil, ErrInvalidTransition
	}

	reg.PaymentStatus = status
	if paymentIntentID != "" {
		reg.PaymentIntentID = paymentIntentID
	}
	reg.UpdatedAt = time.Now()
	return cloneRegistration(reg), nil
}

func (m *MockRepo) CreateInvitations(ctx context.Context, invitations []*Invitation) ([]*Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Invitation, 0, len(invitations))
	for _, inv := range invitations {
		cp := *inv
		m.invitations[cp.ID] = &cp
		result := cp
		out = append(out, &result)
	}
	return out, nil
}
