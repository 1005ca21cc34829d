package services

import (
	"context"
	"fmt"
	"time"

	"github.com/blendhq/blend-server/internal/connect"
	"github.com/blendhq/blend-server/internal/helpers"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/google/uuid"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// CreateEvent forces the host to the authenticated caller; a host_id in
// the payload is never trusted.
func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, hostID uuid.UUID) (*models.Event, error) {
	if hostID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	if event.Visibility == "" {
		event.Visibility = models.VisibilityPublic
	}
	if event.LocationType == "" {
		event.LocationType = models.LocationNone
	}
	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("invalid event data provided: %w", err)
	}
	if event.EndDate != nil && event.EndDate.Before(event.StartDate) {
		return nil, fmt.Errorf("end_date must not be before start_date")
	}

	// Draft unless the caller explicitly creates it published.
	if event.Status != models.EventPublished {
		event.Status = models.EventDraft
	}

	now := time.Now()
	event.ID = uuid.New()
	event.HostID = hostID
	event.Slug = helpers.GenerateSlug(event.Title)
	event.RegistrationCount = 0
	event.ViewCount = 0
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == models.EventPublished {
		event.PublishedAt = &now
	} else {
		event.PublishedAt = nil
	}
	if event.Theme == nil {
		event.Theme = &models.EventTheme{Gradient: "from-teal-400 to-blue-500"}
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	created, err := es.eventRepo.CreateEvent(ctx, event)
	return created, mapErr(err)
}

// GetEvents applies the "my events vs. discover" scoping: an explicit
// host_id filter wins, an authenticated caller with no host_id sees their
// own events, and an anonymous caller sees public events only.
func (es *EventService) GetEvents(ctx context.Context, filters models.EventFilters, caller *models.User) ([]*models.Event, error) {
	if filters.HostID == nil {
		if caller != nil {
			id := caller.ID
			filters.HostID = &id
		} else {
			// Anonymous callers see the public directory only; whatever
			// status they ask for, drafts and cancellations stay hidden.
			filters.Visibility = models.VisibilityPublic
			filters.Status = models.EventPublished
		}
	}
	if filters.Limit < 0 || filters.Offset < 0 {
		return nil, fmt.Errorf("invalid limit or offset")
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	events, err := es.eventRepo.GetEvents(ctx, filters)
	if err != nil {
		return nil, mapErr(err)
	}

	now := time.Now()
	for _, e := range events {
		e.Status = e.EffectiveStatus(now)
	}
	return events, nil
}

func (es *EventService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}

	// Best effort; a lost view is not worth failing the read.
	_ = es.eventRepo.IncrementViewCount(ctx, id)
	event.ViewCount++

	event.Status = event.EffectiveStatus(time.Now())
	return event, nil
}

func (es *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	if slug == "" {
		return nil, models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	event, err := es.eventRepo.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, mapErr(err)
	}
	event.Status = event.EffectiveStatus(time.Now())
	return event, nil
}

// normalizeEventUpdates converts a JSON-decoded partial update into typed
// values and drops everything that is not host-writable: status, slug,
// host and the derived counters only move through their dedicated paths.
func normalizeEventUpdates(updates map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(updates))
	for key, value := range updates {
		switch key {
		case "title":
			v, ok := value.(string)
			if !ok || v == "" {
				return nil, fmt.Errorf("title must be a non-empty string")
			}
			out[key] = v
		case "description", "timezone", "location_name", "location_address",
			"location_url", "cover_image_url", "currency":
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string", key)
			}
			out[key] = v
		case "start_date", "end_date":
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be an RFC3339 timestamp", key)
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%s must be an RFC3339 timestamp", key)
			}
			if key == "start_date" {
				out[key] = t
			} else {
				out[key] = &t
			}
		case "location_type":
			v, ok := value.(string)
			lt := models.LocationType(v)
			if !ok || (lt != models.LocationPhysical && lt != models.LocationVirtual &&
				lt != models.LocationHybrid && lt != models.LocationNone) {
				return nil, fmt.Errorf("invalid location_type")
			}
			out[key] = lt
		case "visibility":
			v, ok := value.(string)
			vis := models.EventVisibility(v)
			if !ok || (vis != models.VisibilityPublic && vis != models.VisibilityPrivate &&
				vis != models.VisibilityUnlisted) {
				return nil, fmt.Errorf("invalid visibility")
			}
			out[key] = vis
		case "capacity":
			if value == nil {
				out[key] = (*int)(nil)
				continue
			}
			v, ok := value.(float64)
			if !ok || v <= 0 || v != float64(int(v)) {
				return nil, fmt.Errorf("capacity must be a positive integer")
			}
			c := int(v)
			out[key] = &c
		case "price_cents":
			v, ok := value.(float64)
			if !ok || v < 0 {
				return nil, fmt.Errorf("price_cents must be a non-negative integer")
			}
			out[key] = int64(v)
		case "require_approval", "allow_waitlist", "is_paid":
			v, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%s must be a boolean", key)
			}
			out[key] = v
		case "calendar_id":
			if value == nil {
				out[key] = (*uuid.UUID)(nil)
				continue
			}
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("calendar_id must be a UUID string")
			}
			id, err := uuid.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("calendar_id must be a UUID string")
			}
			out[key] = &id
		case "theme":
			v, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("theme must be an object")
			}
			theme := &models.EventTheme{}
			if g, ok := v["gradient"].(string); ok {
				theme.Gradient = g
			}
			if c, ok := v["color"].(string); ok {
				theme.Color = c
			}
			out[key] = theme
		default:
			// Not host-writable; dropped silently.
		}
	}
	if ea, ok := out["end_date"].(*time.Time); ok {
		if sd, ok := out["start_date"].(time.Time); ok && ea.Before(sd) {
			return nil, fmt.Errorf("end_date must not be before start_date")
		}
	}
	return out, nil
}

// checkDateBounds guards the end-after-start rule when only one of the
// two dates arrives in a partial update; the other bound comes from the
// stored event.
func (es *EventService) checkDateBounds(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	end, hasEnd := updates["end_date"].(*time.Time)
	start, hasStart := updates["start_date"].(time.Time)
	if hasEnd == hasStart {
		return nil
	}

	stored, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return mapErr(err)
	}
	if hasEnd && end.Before(stored.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if hasStart && stored.EndDate != nil && stored.EndDate.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

func (es *EventService) UpdateEvent(ctx context.Context, id, hostID uuid.UUID, updates map[string]any) (*models.Event, error) {
	if hostID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if id == uuid.Nil {
		return nil, models.ErrNotFound
	}

	normalized, err := normalizeEventUpdates(updates)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	if err := es.checkDateBounds(ctx, id, normalized); err != nil {
		return nil, err
	}

	event, err := es.eventRepo.UpdateEvent(ctx, id, hostID, normalized)
	return event, mapErr(err)
}

func (es *EventService) DeleteEvent(ctx context.Context, id, hostID uuid.UUID) error {
	if hostID == uuid.Nil {
		return models.ErrNotAuthenticated
	}
	if id == uuid.Nil {
		return models.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	return mapErr(es.eventRepo.DeleteEvent(ctx, id, hostID))
}

func (es *EventService) PublishEvent(ctx context.Context, id, hostID uuid.UUID) (*models.Event, error) {
	if hostID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	event, err := es.eventRepo.TransitionStatus(ctx, id, hostID, models.EventPublished)
	return event, mapErr(err)
}

func (es *EventService) CancelEvent(ctx context.Context, id, hostID uuid.UUID) (*models.Event, error) {
	if hostID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	event, err := es.eventRepo.TransitionStatus(ctx, id, hostID, models.EventCancelled)
	return event, mapErr(err)
}

// UploadCoverImage pushes a local file to Cloudinary and points the
// event's cover at the secure URL. Cleans up the upload when the event
// write fails.
func (es *EventService) UploadCoverImage(ctx context.Context, id, hostID uuid.UUID, filePath string) (*models.Event, error) {
	if hostID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if connect.Cld == nil {
		return nil, models.ErrBackendUnavailable
	}

	urls, publicIDs, err := helpers.UploadImages(ctx, connect.Cld, []string{filePath}, helpers.EventsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover image: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no image uploaded")
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	event, err := es.eventRepo.UpdateEvent(ctx, id, hostID, map[string]any{"cover_image_url": urls[0]})
	if err != nil {
		helpers.DeleteImages(ctx, connect.Cld, helpers.EventsFolder, publicIDs)
		return nil, mapErr(err)
	}
	return event, nil
}
