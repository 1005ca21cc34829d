package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedEvent(t *testing.T, repo *MockRepo, e *Event) *Event {
	t.Helper()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Slug == "" {
		e.Slug = e.Title + "-" + e.ID.String()[:8]
	}
	if e.Status == "" {
		e.Status = EventPublished
	}
	if e.Visibility == "" {
		e.Visibility = VisibilityPublic
	}
	if e.StartDate.IsZero() {
		e.StartDate = time.Now().Add(24 * time.Hour)
	}
	created, err := repo.CreateEvent(context.Background(), e)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return created
}

func TestMockCreateEventSlugConflict(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	host := uuid.New()

	seedEvent(t, repo, &Event{HostID: host, Title: "Launch", Slug: "launch-party"})

	_, err := repo.CreateEvent(context.Background(), &Event{
		ID: uuid.New(), HostID: host, Title: "Launch", Slug: "launch-party",
		Status: EventDraft, Visibility: VisibilityPublic, StartDate: time.Now(),
	})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate slug error = %v, want ErrSlugTaken", err)
	}
}

func TestMockGetEventsFiltering(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	hostA := uuid.New()
	hostB := uuid.New()

	seedEvent(t, repo, &Event{HostID: hostA, Title: "Go Meetup", Description: "monthly gophers"})
	seedEvent(t, repo, &Event{HostID: hostA, Title: "Private Dinner", Visibility: VisibilityPrivate})
	seedEvent(t, repo, &Event{HostID: hostB, Title: "Jazz Night"})

	byHost, err := repo.GetEvents(ctx, EventFilters{HostID: &hostA})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(byHost) != 2 {
		t.Errorf("host filter returned %d events, want 2", len(byHost))
	}

	public, err := repo.GetEvents(ctx, EventFilters{Visibility: VisibilityPublic})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(public) != 2 {
		t.Errorf("visibility filter returned %d events, want 2", len(public))
	}

	search, err := repo.GetEvents(ctx, EventFilters{Search: "gophers"})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(search) != 1 || search[0].Title != "Go Meetup" {
		t.Errorf("search returned %d events, want the meetup", len(search))
	}
}

func TestMockGetEventsSortAndPaging(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	host := uuid.New()
	base := time.Now()

	for i := 3; i >= 1; i-- {
		seedEvent(t, repo, &Event{
			HostID:    host,
			Title:     "Event",
			Slug:      uuid.New().String(),
			StartDate: base.Add(time.Duration(i) * time.Hour),
		})
	}

	events, err := repo.GetEvents(ctx, EventFilters{})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	for i := 1; i < len(events); i++ {
		if events[i].StartDate.Before(events[i-1].StartDate) {
			t.Fatal("events not sorted by start date ascending")
		}
	}

	paged, err := repo.GetEvents(ctx, EventFilters{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(paged) != 1 {
		t.Errorf("paged query returned %d events, want 1", len(paged))
	}

	empty, err := repo.GetEvents(ctx, EventFilters{Offset: 10})
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range offset returned %d events, want 0", len(empty))
	}
}

func TestMockUpdateEventAuthorization(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	host := uuid.New()
	stranger := uuid.New()

	event := seedEvent(t, repo, &Event{HostID: host, Title: "Workshop"})

	if _, err := repo.UpdateEvent(ctx, event.ID, stranger, map[string]any{"title": "Hijacked"}); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-host update error = %v, want ErrNotAuthorized", err)
	}
	if err := repo.DeleteEvent(ctx, event.ID, stranger); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-host delete error = %v, want ErrNotAuthorized", err)
	}
	if _, err := repo.UpdateEvent(ctx, uuid.New(), host, map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing event update error = %v, want ErrNotFound", err)
	}

	updated, err := repo.UpdateEvent(ctx, event.ID, host, map[string]any{"title": "Renamed"})
	if err != nil {
		t.Fatalf("host update failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want %q", updated.Title, "Renamed")
	}
}

func TestMockUpdateEventIgnoresProtectedFields(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	host := uuid.New()

	event := seedEvent(t, repo, &Event{HostID: host, Title: "Protected", Status: EventDraft})

	updated, err := repo.UpdateEvent(ctx, event.ID, host, map[string]any{
		"status":             EventPublished,
		"host_id":            uuid.New(),
		"registration_count": 99,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != EventDraft {
		t.Errorf("status mutated through free-form update: %s", updated.Status)
	}
	if updated.HostID != host {
		t.Error("host_id mutated through free-form update")
	}
	if updated.RegistrationCount != 0 {
		t.Errorf("registration_count mutated through free-form update: %d", updated.RegistrationCount)
	}
}

func TestMockTransitionStatus(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	host := uuid.New()

	event := seedEvent(t, repo, &Event{HostID: host, Title: "Lifecycle", Status: EventDraft})

	published, err := repo.TransitionStatus(ctx, event.ID, host, EventPublished)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.Status != EventPublished {
		t.Errorf("status = %s, want published", published.Status)
	}
	if published.PublishedAt == nil {
		t.Error("published_at not stamped on publish")
	}

	if _, err := repo.TransitionStatus(ctx, event.ID, host, EventPublished); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-publish error = %v, want ErrInvalidTransition", err)
	}

	cancelled, err := repo.TransitionStatus(ctx, event.ID, host, EventCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != EventCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	if _, err := repo.TransitionStatus(ctx, event.ID, host, EventPublished); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancelled -> published error = %v, want ErrInvalidTransition", err)
	}
}

func TestMockViewCount(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()

	event := seedEvent(t, repo, &Event{HostID: uuid.New(), Title: "Counted"})

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(ctx, event.ID); err != nil {
			t.Fatalf("IncrementViewCount failed: %v", err)
		}
	}

	got, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEventByID failed: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view count = %d, want 3", got.ViewCount)
	}
}

func TestMockUpdateEventKeepsEndAfterStart(t *testing.T) {
	repo := MockNewRepo(false, "test-secret")
	ctx := context.Background()
	host := uuid.New()

	start := time.Now().Add(48 * time.Hour)
	end := start.Add(2 * time.Hour)
	event := seedEvent(t, repo, &Event{
		HostID: host, Title: "Bounded", StartDate: start, EndDate: &end,
	})

	early := start.Add(-time.Hour)
	if _, err := repo.UpdateEvent(ctx, event.ID, host, map[string]any{"end_date": &early}); err == nil {
		t.Error("end_date before stored start_date was accepted")
	}

	late := end.Add(time.Hour)
	if _, err := repo.UpdateEvent(ctx, event.ID, host, map[string]any{"start_date": late}); err == nil {
		t.Error("start_date after stored end_date was accepted")
	}

	got, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEventByID failed: %v", err)
	}
	if !got.StartDate.Equal(start) || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("rejected updates mutated the event: start=%v end=%v", got.StartDate, got.EndDate)
	}

	// Moving both bounds together stays legal.
	newStart := end.Add(24 * time.Hour)
	newEnd := newStart.Add(time.Hour)
	if _, err := repo.UpdateEvent(ctx, event.ID, host, map[string]any{
		"start_date": newStart, "end_date": &newEnd,
	}); err != nil {
		t.Errorf("valid joint date update rejected: %v", err)
	}
}
