package models

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func cloneCalendar(c *Calendar) *Calendar {
	cp := *c
	return &cp
}

func (m *MockRepo) CreateCalendar(ctx context.Context, calendar *Calendar) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.calendars {
		if existing.Slug == calendar.Slug {
			return nil, ErrSlugTaken
		}
	}

	m.calendars[calendar.ID] = cloneCalendar(calendar)
	return cloneCalendar(calendar), nil
}

func (m *MockRepo) GetCalendars(ctx context.Context, ownerID *uuid.UUID) ([]*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calendars []*Calendar
	for _, c := range m.calendars {
		if ownerID != nil {
			if c.OwnerID == *ownerID {
				calendars = append(calendars, cloneCalendar(c))
			}
		} else if c.IsPublic {
			calendars = append(calendars, cloneCalendar(c))
		}
	}
	sort.Slice(calendars, func(i, j int) bool {
		return calendars[i].CreatedAt.After(calendars[j].CreatedAt)
	})
	return calendars, nil
}

func (m *MockRepo) GetCalendarByID(ctx context.Context, id uuid.UUID) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calendar, ok := m.calendars[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCalendar(calendar), nil
}

func (m *MockRepo) GetCalendarBySlug(ctx context.Context, slug string) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, calendar := range m.calendars {
		if calendar.Slug == slug {
			return cloneCalendar(calendar), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockRepo) UpdateCalendar(ctx context.Context, id, ownerID uuid.UUID, updates map[string]any) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calendar, ok := m.calendars[id]
	if !ok {
		return nil, ErrNotFound
	}
	if calendar.OwnerID != ownerID {
		return nil, ErrNotAuthorized
	}

	for key, value := range updates {
		switch key {
		case "name":
			if v, ok := value.(string); ok {
				calendar.Name = v
			}
		case "description":
			if v, ok := value.(string); ok {
				calendar.Description = v
			}
		case "avatar_url":
			if v, ok := value.(string); ok {
				calendar.AvatarURL = v
			}
		case "cover_image_url":
			if v, ok := value.(string); ok {
				calendar.CoverImageURL = v
			}
		case "color":
			if v, ok := value.(string); ok {
				calendar.Color = v
			}
		case "is_public":
			if v, ok := value.(bool); ok {
				calendar.IsPublic = v
			}
		}
	}
	calendar.UpdatedAt = time.Now()
	return cloneCalendar(calendar), nil
}

func (m *MockRepo) DeleteCalendar(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	calendar, ok := m.calendars[id]
	if !ok {
		return ErrNotFound
	}
	if calendar.OwnerID != ownerID {
		return ErrNotAuthorized
	}

	delete(m.calendars, id)
	for subID, sub := range m.subscriptions {
		if sub.CalendarID == id {
			delete(m.subscriptions, subID)
		}
	}
	return nil
}

// Subscribe inserts the subscription and bumps subscriber_count inside the
// same critical section, so the count can never drift from the row set.
func (m *MockRepo) Subscribe(ctx context.Context, calendarID, userID uuid.UUID) (*CalendarSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calendar, ok := m.calendars[calendarID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, sub := range m.subscriptions {
		if sub.CalendarID == calendarID && sub.UserID == userID {
			return nil, ErrAlreadySubscribed
		}
	}

	sub := &CalendarSubscription{
		ID:         uuid.New(),
		CalendarID: calendarID,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
	m.subscriptions[sub.ID] = sub
	calendar.SubscriberCount++

	cp := *sub
	return &cp, nil
}

func (m *MockRepo) Unsubscribe(ctx context.Context, calendarID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	calendar, ok := m.calendars[calendarID]
	if !ok {
		return ErrNotFound
	}
	for subID, sub := range m.subscriptions {
		if sub.CalendarID == calendarID && sub.UserID == userID {
			delete(m.subscriptions, subID)
			calendar.SubscriberCount--
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockRepo) GetSubscriptions(ctx context.Context, userID uuid.UUID) ([]*CalendarSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var subs []*CalendarSubscription
	for _, sub := range m.subscriptions {
		if sub.UserID == userID {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs, nil
}
