package models

import (
	"testing"
	"time"
)

func TestEventStatusTransitions(t *testing.T) {
	cases := []struct {
		from    EventStatus
		to      EventStatus
		allowed bool
	}{
		{EventDraft, EventPublished, true},
		{EventDraft, EventCancelled, false},
		{EventDraft, EventCompleted, false},
		{EventPublished, EventCancelled, true},
		{EventPublished, EventCompleted, true},
		{EventPublished, EventDraft, false},
		{EventCancelled, EventPublished, false},
		{EventCancelled, EventDraft, false},
		{EventCompleted, EventPublished, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestEffectiveStatusDerivesCompleted(t *testing.T) {
	now := time.Now()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	ended := &Event{Status: EventPublished, StartDate: past.Add(-time.Hour), EndDate: &past}
	if got := ended.EffectiveStatus(now); got != EventCompleted {
		t.Errorf("published event past its end date reads as %s, want %s", got, EventCompleted)
	}

	upcoming := &Event{Status: EventPublished, StartDate: future}
	if got := upcoming.EffectiveStatus(now); got != EventPublished {
		t.Errorf("upcoming event reads as %s, want %s", got, EventPublished)
	}

	// With no end date the start date stands in for it.
	startedOnly := &Event{Status: EventPublished, StartDate: past}
	if got := startedOnly.EffectiveStatus(now); got != EventCompleted {
		t.Errorf("published event with past start and no end reads as %s, want %s", got, EventCompleted)
	}
}

func TestEffectiveStatusLeavesOtherStatusesAlone(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	for _, status := range []EventStatus{EventDraft, EventCancelled} {
		e := &Event{Status: status, StartDate: past, EndDate: &past}
		if got := e.EffectiveStatus(now); got != status {
			t.Errorf("EffectiveStatus rewrote %s to %s", status, got)
		}
	}
}
