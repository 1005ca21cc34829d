package services

import (
	"context"
	"fmt"
	"time"

	"github.com/blendhq/blend-server/internal/helpers"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

type CalendarService struct {
	calendarRepo models.CalendarRepo
	eventRepo    models.EventRepo
}

func NewCalendarService(calendarRepo models.CalendarRepo, eventRepo models.EventRepo) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		eventRepo:    eventRepo,
	}
}

func (cs *CalendarService) CreateCalendar(ctx context.Context, calendar *models.Calendar, ownerID uuid.UUID) (*models.Calendar, error) {
	if ownerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if err := models.Validate.Struct(calendar); err != nil {
		return nil, fmt.Errorf("invalid calendar data provided: %w", err)
	}

	now := time.Now()
	calendar.ID = uuid.New()
	calendar.OwnerID = ownerID
	calendar.Slug = helpers.Slugify(calendar.Name)
	calendar.SubscriberCount = 0
	calendar.CreatedAt = now
	calendar.UpdatedAt = now
	if calendar.Color == "" {
		calendar.Color = "#14b8a6"
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	created, err := cs.calendarRepo.CreateCalendar(ctx, calendar)
	return created, mapErr(err)
}

// GetCalendars lists one owner's calendars, or the public directory when
// no owner is given.
func (cs *CalendarService) GetCalendars(ctx context.Context, ownerID *uuid.UUID) ([]*models.Calendar, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	calendars, err := cs.calendarRepo.GetCalendars(ctx, ownerID)
	return calendars, mapErr(err)
}

func (cs *CalendarService) GetCalendarByID(ctx context.Context, id uuid.UUID) (*models.Calendar, error) {
	if id == uuid.Nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	calendar, err := cs.calendarRepo.GetCalendarByID(ctx, id)
	return calendar, mapErr(err)
}

func (cs *CalendarService) GetCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error) {
	if slug == "" {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	calendar, err := cs.calendarRepo.GetCalendarBySlug(ctx, slug)
	return calendar, mapErr(err)
}

func (cs *CalendarService) UpdateCalendar(ctx context.Context, id, ownerID uuid.UUID, updates map[string]any) (*models.Calendar, error) {
	if ownerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	allowed := map[string]bool{
		"name": true, "description": true, "avatar_url": true,
		"cover_image_url": true, "color": true, "is_public": true,
	}
	sanitized := make(map[string]any, len(updates))
	for key, value := range updates {
		if allowed[key] {
			sanitized[key] = value
		}
	}
	if len(sanitized) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	calendar, err := cs.calendarRepo.UpdateCalendar(ctx, id, ownerID, sanitized)
	return calendar, mapErr(err)
}

func (cs *CalendarService) DeleteCalendar(ctx context.Context, id, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	return mapErr(cs.calendarRepo.DeleteCalendar(ctx, id, ownerID))
}

func (cs *CalendarService) Subscribe(ctx context.Context, calendarID, userID uuid.UUID) (*models.CalendarSubscription, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if calendarID == uuid.Nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	sub, err := cs.calendarRepo.Subscribe(ctx, calendarID, userID)
	return sub, mapErr(err)
}

func (cs *CalendarService) Unsubscribe(ctx context.Context, calendarID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	return mapErr(cs.calendarRepo.Unsubscribe(ctx, calendarID, userID))
}

func (cs *CalendarService) GetSubscriptions(ctx context.Context, userID uuid.UUID) ([]*models.CalendarSubscription, error) {
	if userID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	subs, err := cs.calendarRepo.GetSubscriptions(ctx, userID)
	return subs, mapErr(err)
}

// GetCalendarEvents lists the events attached to a calendar with the
// usual event filters composed on top.
func (cs *CalendarService) GetCalendarEvents(ctx context.Context, calendarID uuid.UUID, filters models.EventFilters) ([]*models.Event, error) {
	if calendarID == uuid.Nil {
		return nil, models.ErrNotFound
	}
	if _, err := cs.GetCalendarByID(ctx, calendarID); err != nil {
		return nil, err
	}

	filters.CalendarID = &calendarID

	ctx, cancel := opContext(ctx)
	defer cancel()

	events, err := cs.eventRepo.GetEvents(ctx, filters)
	if err != nil {
		return nil, mapErr(err)
	}
	now := time.Now()
	for _, e := range events {
		e.Status = e.EffectiveStatus(now)
	}
	return events, nil
}
