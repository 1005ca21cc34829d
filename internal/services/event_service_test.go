package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

func newEventService() (*EventService, *models.MockRepo) {
	repo := models.MockNewRepo(false, "test-secret")
	return NewEventService(repo), repo
}

func validEvent(title string) *models.Event {
	return &models.Event{
		Title:     title,
		StartDate: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateEventDefaults(t *testing.T) {
	svc, _ := newEventService()
	host := uuid.New()

	created, err := svc.CreateEvent(context.Background(), validEvent("Friday Night Jazz"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if created.HostID != host {
		t.Errorf("host_id = %s, want %s", created.HostID, host)
	}
	if created.Status != models.EventDraft {
		t.Errorf("status = %s, want draft", created.Status)
	}
	if created.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %s, want public", created.Visibility)
	}
	if created.LocationType != models.LocationNone {
		t.Errorf("location_type = %s, want none", created.LocationType)
	}
	if created.Slug == "" {
		t.Error("slug not generated")
	}
	if created.Theme == nil || created.Theme.Gradient == "" {
		t.Error("default theme not assigned")
	}
	if created.PublishedAt != nil {
		t.Error("draft event has published_at set")
	}
}

func TestCreateEventIgnoresClientHostAndCounters(t *testing.T) {
	svc, _ := newEventService()
	host := uuid.New()

	event := validEvent("Spoofed")
	event.HostID = uuid.New()
	event.RegistrationCount = 50
	event.ViewCount = 999

	created, err := svc.CreateEvent(context.Background(), event, host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if created.HostID != host {
		t.Error("payload host_id was trusted")
	}
	if created.RegistrationCount != 0 || created.ViewCount != 0 {
		t.Error("payload counters were trusted")
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newEventService()
	host := uuid.New()
	ctx := context.Background()

	if _, err := svc.CreateEvent(ctx, &models.Event{StartDate: time.Now()}, host); err == nil {
		t.Error("event without title accepted")
	}

	bad := validEvent("Backwards")
	end := bad.StartDate.Add(-time.Hour)
	bad.EndDate = &end
	if _, err := svc.CreateEvent(ctx, bad, host); err == nil {
		t.Error("end date before start date accepted")
	}

	if _, err := svc.CreateEvent(ctx, validEvent("Anon"), uuid.Nil); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("nil host error = %v, want ErrNotAuthenticated", err)
	}
}

func TestCreateEventPublishedImmediately(t *testing.T) {
	svc, _ := newEventService()

	event := validEvent("Instant")
	event.Status = models.EventPublished

	created, err := svc.CreateEvent(context.Background(), event, uuid.New())
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if created.Status != models.EventPublished {
		t.Errorf("status = %s, want published", created.Status)
	}
	if created.PublishedAt == nil {
		t.Error("published_at not stamped")
	}
}

func TestGetEventsScoping(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	draft, err := svc.CreateEvent(ctx, validEvent("My Draft"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if _, err := svc.PublishEvent(ctx, draft.ID, host); err != nil {
		t.Fatalf("PublishEvent failed: %v", err)
	}

	secondDraft, err := svc.CreateEvent(ctx, validEvent("Still Cooking"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	private := validEvent("Secret Dinner")
	private.Visibility = models.VisibilityPrivate
	private.Status = models.EventPublished
	if _, err := svc.CreateEvent(ctx, private, uuid.New()); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	// Anonymous callers get the public published feed only.
	public, err := svc.GetEvents(ctx, models.EventFilters{}, nil)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(public) != 1 || public[0].ID != draft.ID {
		t.Errorf("anonymous feed has %d events, want only the published one", len(public))
	}

	// An authenticated caller with no host filter sees their own events,
	// drafts included.
	caller := &models.User{ID: host}
	mine, err := svc.GetEvents(ctx, models.EventFilters{}, caller)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("own feed has %d events, want 2", len(mine))
	}
	found := false
	for _, e := range mine {
		if e.ID == secondDraft.ID {
			found = true
		}
	}
	if !found {
		t.Error("own draft missing from own feed")
	}
}

func TestGetEventByIDCountsView(t *testing.T) {
	svc, repo := newEventService()
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, validEvent("Viewed"), uuid.New())
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	got, err := svc.GetEventByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEventByID failed: %v", err)
	}
	if got.ViewCount != 1 {
		t.Errorf("view count = %d, want 1", got.ViewCount)
	}

	stored, err := repo.GetEventByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("repo read failed: %v", err)
	}
	if stored.ViewCount != 1 {
		t.Errorf("stored view count = %d, want 1", stored.ViewCount)
	}

	if _, err := svc.GetEventByID(ctx, uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing event error = %v, want ErrNotFound", err)
	}
}

func TestUpdateEventNormalization(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	created, err := svc.CreateEvent(ctx, validEvent("Mutable"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	newStart := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	updated, err := svc.UpdateEvent(ctx, created.ID, host, map[string]any{
		"title":      "Mutable v2",
		"capacity":   float64(25),
		"start_date": newStart.Format(time.RFC3339),
		"is_paid":    true,
	})
	if err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}
	if updated.Title != "Mutable v2" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Capacity == nil || *updated.Capacity != 25 {
		t.Error("capacity not applied")
	}
	if !updated.StartDate.Equal(newStart) {
		t.Errorf("start_date = %v, want %v", updated.StartDate, newStart)
	}
	if !updated.IsPaid {
		t.Error("is_paid not applied")
	}
}

func TestUpdateEventRejectsBadInput(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	created, err := svc.CreateEvent(ctx, validEvent("Strict"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	bad := []map[string]any{
		{"title": ""},
		{"capacity": float64(-3)},
		{"capacity": float64(2.5)},
		{"start_date": "tomorrow"},
		{"visibility": "everyone"},
		{"location_type": "moon"},
	}
	for _, updates := range bad {
		if _, err := svc.UpdateEvent(ctx, created.ID, host, updates); err == nil {
			t.Errorf("updates %v accepted, want error", updates)
		}
	}

	// Only protected fields leaves nothing to apply.
	if _, err := svc.UpdateEvent(ctx, created.ID, host, map[string]any{"status": "published"}); err == nil {
		t.Error("status-only update accepted")
	}
}

func TestUpdateEventAuthorization(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	created, err := svc.CreateEvent(ctx, validEvent("Owned"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if _, err := svc.UpdateEvent(ctx, created.ID, uuid.New(), map[string]any{"title": "Stolen"}); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("non-host update error = %v, want ErrNotAuthorized", err)
	}
	if err := svc.DeleteEvent(ctx, created.ID, uuid.New()); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("non-host delete error = %v, want ErrNotAuthorized", err)
	}
}

func TestPublishAndCancelEvent(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	created, err := svc.CreateEvent(ctx, validEvent("Lifecycle"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	published, err := svc.PublishEvent(ctx, created.ID, host)
	if err != nil {
		t.Fatalf("PublishEvent failed: %v", err)
	}
	if published.Status != models.EventPublished {
		t.Errorf("status = %s, want published", published.Status)
	}

	if _, err := svc.PublishEvent(ctx, created.ID, host); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("double publish error = %v, want ErrInvalidTransition", err)
	}

	cancelled, err := svc.CancelEvent(ctx, created.ID, host)
	if err != nil {
		t.Fatalf("CancelEvent failed: %v", err)
	}
	if cancelled.Status != models.EventCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
}

// A published event whose end has passed reads as completed without any
// stored mutation.
func TestGetEventDerivesCompleted(t *testing.T) {
	svc, repo := newEventService()
	ctx := context.Background()
	host := uuid.New()

	past := time.Now().Add(-48 * time.Hour)
	pastEnd := past.Add(2 * time.Hour)
	seeded := &models.Event{
		ID: uuid.New(), HostID: host, Title: "Yesterday", Slug: "yesterday-1",
		Status: models.EventPublished, Visibility: models.VisibilityPublic,
		LocationType: models.LocationNone,
		StartDate:    past, EndDate: &pastEnd,
	}
	if _, err := repo.CreateEvent(ctx, seeded); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := svc.GetEventByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetEventByID failed: %v", err)
	}
	if got.Status != models.EventCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	stored, _ := repo.GetEventByID(ctx, seeded.ID)
	if stored.Status != models.EventPublished {
		t.Errorf("stored status mutated to %s", stored.Status)
	}
}

func TestGetEventsAnonymousStatusFilterIsForced(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	draft, err := svc.CreateEvent(ctx, validEvent("Unannounced"), host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	published := validEvent("Announced")
	published.Status = models.EventPublished
	if _, err := svc.CreateEvent(ctx, published, host); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	// An anonymous caller asking for drafts still gets the published
	// directory, never someone's unannounced event.
	events, err := svc.GetEvents(ctx, models.EventFilters{Status: models.EventDraft}, nil)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	for _, e := range events {
		if e.ID == draft.ID {
			t.Fatal("anonymous status=draft query returned a draft event")
		}
	}
	if len(events) != 1 {
		t.Errorf("anonymous feed has %d events, want 1 published", len(events))
	}
}

func TestUpdateEventSingleDateBound(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	host := uuid.New()

	event := validEvent("Bounded")
	end := event.StartDate.Add(3 * time.Hour)
	event.EndDate = &end
	created, err := svc.CreateEvent(ctx, event, host)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	badEnd := created.StartDate.Add(-2 * time.Hour).Format(time.RFC3339)
	if _, err := svc.UpdateEvent(ctx, created.ID, host, map[string]any{"end_date": badEnd}); err == nil {
		t.Error("end_date before stored start_date was accepted")
	}

	badStart := end.Add(time.Hour).Format(time.RFC3339)
	if _, err := svc.UpdateEvent(ctx, created.ID, host, map[string]any{"start_date": badStart}); err == nil {
		t.Error("start_date after stored end_date was accepted")
	}

	goodEnd := created.StartDate.Add(5 * time.Hour).Truncate(time.Second)
	updated, err := svc.UpdateEvent(ctx, created.ID, host, map[string]any{
		"end_date": goodEnd.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("valid end_date update rejected: %v", err)
	}
	if updated.EndDate == nil || !updated.EndDate.Equal(goodEnd) {
		t.Errorf("end_date = %v, want %v", updated.EndDate, goodEnd)
	}
}
