package models

import "testing"

func TestGuestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    RegistrationStatus
		to      RegistrationStatus
		allowed bool
	}{
		{RegistrationPending, RegistrationApproved, true},
		{RegistrationPending, RegistrationCancelled, true},
		{RegistrationPending, RegistrationCheckedIn, false},
		{RegistrationPending, RegistrationWaitlist, false},
		{RegistrationWaitlist, RegistrationApproved, true},
		{RegistrationWaitlist, RegistrationCancelled, true},
		{RegistrationWaitlist, RegistrationCheckedIn, false},
		{RegistrationApproved, RegistrationCheckedIn, true},
		{RegistrationApproved, RegistrationCancelled, true},
		{RegistrationApproved, RegistrationPending, false},
		{RegistrationCheckedIn, RegistrationCancelled, false},
		{RegistrationCheckedIn, RegistrationCheckedIn, false},
		{RegistrationCancelled, RegistrationApproved, false},
		{RegistrationCancelled, RegistrationPending, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestCountsTowardCapacity(t *testing.T) {
	counting := map[RegistrationStatus]bool{
		RegistrationPending:   false,
		RegistrationWaitlist:  false,
		RegistrationApproved:  true,
		RegistrationCheckedIn: true,
		RegistrationCancelled: false,
	}
	for status, want := range counting {
		if got := status.CountsTowardCapacity(); got != want {
			t.Errorf("CountsTowardCapacity(%s) = %v, want %v", status, got, want)
		}
	}
}
