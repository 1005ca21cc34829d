package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func cloneEvent(e *Event) *Event {
	c := *e
	if e.Theme != nil {
		t := *e.Theme
		c.Theme = &t
	}
	return &c
}

// applyEventUpdates writes only the permitted mutable fields. Status,
// host_id and the derived counters are never reachable through a
// free-form update.
func applyEventUpdates(e *Event, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				e.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				e.Description = v
			}
		case "start_date":
			if v, ok := value.(time.Time); ok {
				e.StartDate = v
			}
		case "end_date":
			if v, ok := value.(*time.Time); ok {
				e.EndDate = v
			}
		case "timezone":
			if v, ok := value.(string); ok {
				e.Timezone = v
			}
		case "location_type":
			if v, ok := value.(LocationType); ok {
				e.LocationType = v
			}
		case "location_name":
			if v, ok := value.(string); ok {
				e.LocationName = v
			}
		case "location_address":
			if v, ok := value.(string); ok {
				e.LocationAddress = v
			}
		case "location_url":
			if v, ok := value.(string); ok {
				e.LocationURL = v
			}
		case "cover_image_url":
			if v, ok := value.(string); ok {
				e.CoverImageURL = v
			}
		case "theme":
			if v, ok := value.(*EventTheme); ok {
				e.Theme = v
			}
		case "capacity":
			if v, ok := value.(*int); ok {
				e.Capacity = v
			}
		case "visibility":
			if v, ok := value.(EventVisibility); ok {
				e.Visibility = v
			}
		case "require_approval":
			if v, ok := value.(bool); ok {
				e.RequireApproval = v
			}
		case "allow_waitlist":
			if v, ok := value.(bool); ok {
				e.AllowWaitlist = v
			}
		case "is_paid":
			if v, ok := value.(bool); ok {
				e.IsPaid = v
			}
		case "price_cents":
			if v, ok := value.(int64); ok {
				e.PriceCents = v
			}
		case "currency":
			if v, ok := value.(string); ok {
				e.Currency = v
			}
		case "calendar_id":
			if v, ok := value.(*uuid.UUID); ok {
				e.CalendarID = v
			}
		}
	}
	e.UpdatedAt = time.Now()
}

func (m *MockRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.events {
		if existing.Slug == event.Slug {
			return nil, ErrSlugTaken
		}
	}

	m.events[event.ID] = cloneEvent(event)
	return cloneEvent(event), nil
}

func matchesFilters(e *Event, f EventFilters) bool {
	if f.HostID != nil && e.HostID != *f.HostID {
		return false
	}
	if f.CalendarID != nil && (e.CalendarID == nil || *e.CalendarID != *f.CalendarID) {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Visibility != "" && e.Visibility != f.Visibility {
		return false
	}
	if f.LocationType != "" && e.LocationType != f.LocationType {
		return false
	}
	if f.StartAfter != nil && e.StartDate.Before(*f.StartAfter) {
		return false
	}
	if f.StartBefore != nil && e.StartDate.After(*f.StartBefore) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) {
			return false
		}
	}
	return true
}

func (m *MockRepo) GetEvents(ctx context.Context, filters EventFilters) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []*Event
	for _, e := range m.events {
		if matchesFilters(e, filters) {
			events = append(events, cloneEvent(e))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(events) {
			return []*Event{}, nil
		}
		events = events[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(events) {
		events = events[:filters.Limit]
	}
	return events, nil
}

func (m *MockRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEvent(event), nil
}

func (m *MockRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	event.ViewCount++
	return nil
}

func (m *MockRepo) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range m.events {
		if event.Slug == slug {
			return cloneEvent(event), nil
		}
	}
	return nil, ErrNotFound
}

// checkEventDates merges the incoming dates with the stored ones and
// rejects an update that would leave end_date before start_date.
func checkEventDates(e *Event, updates map[string]any) error {
	start := e.StartDate
	if v, ok := updates["start_date"].(time.Time); ok {
		start = v
	}
	end := e.EndDate
	if v, ok := updates["end_date"].(*time.Time); ok {
		end = v
	}
	if end != nil && end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

func (m *MockRepo) UpdateEvent(ctx context.Context, id, hostID uuid.UUID, updates map[string]any) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if event.HostID != hostID {
		return nil, ErrNotAuthorized
	}
	if err := checkEventDates(event, updates); err != nil {
		return nil, err
	}

	applyEventUpdates(event, updates)
	return cloneEvent(event), nil
}

func (m *MockRepo) DeleteEvent(ctx context.Context, id, hostID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	if event.HostID != hostID {
		return ErrNotAuthorized
	}

	delete(m.events, id)
	return nil
}

func (m *MockRepo) TransitionStatus(ctx context.Context, id, hostID uuid.UUID, to EventStatus) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if event.HostID != hostID {
		return nil, ErrNotAuthorized
	}
	if !event.Status.CanTransition(to) {
		return nil, ErrInvalidTransition
	}

	event.Status = to
	now := time.Now()
	event.UpdatedAt = now
	if to == EventPublished {
		event.PublishedAt = &now
	}
	return cloneEvent(event), nil
}
