package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	if _, err := col.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

func buildEventFilter(f EventFilters) bson.M {
	filter := bson.M{}
	if f.HostID != nil {
		filter["host_id"] = *f.HostID
	}
	if f.CalendarID != nil {
		filter["calendar_id"] = *f.CalendarID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Visibility != "" {
		filter["visibility"] = f.Visibility
	}
	if f.LocationType != "" {
		filter["location_type"] = f.LocationType
	}
	dateRange := bson.M{}
	if f.StartAfter != nil {
		dateRange["$gte"] = *f.StartAfter
	}
	if f.StartBefore != nil {
		dateRange["$lte"] = *f.StartBefore
	}
	if len(dateRange) > 0 {
		filter["start_date"] = dateRange
	}
	if f.Search != "" {
		pattern := primitiveRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func primitiveRegex(search string) bson.M {
	return bson.M{"$regex": search, "$options": "i"}
}

func (mdb *MongodbRepo) GetEvents(ctx context.Context, filters EventFilters) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	if filters.Offset > 0 {
		opts.SetSkip(int64(filters.Offset))
	}
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit))
	}

	cursor, err := col.Find(ctx, buildEventFilter(filters), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"slug": slug}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event by slug: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id, hostID uuid.UUID, updates map[string]any) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	for key, value := range updates {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = col.FindOneAndUpdate(ctx,
		bson.M{"id": id, "host_id": hostID},
		bson.M{"$set": set},
		opts,
	).Decode(&event)
	if err == nil {
		return &event, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	// Distinguish a missing event from someone else's event.
	if _, lookupErr := mdb.GetEventByID(ctx, id); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, ErrNotAuthorized
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id, hostID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"id": id, "host_id": hostID})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		if _, lookupErr := mdb.GetEventByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return ErrNotAuthorized
	}
	return nil
}

// TransitionStatus is a constrained update: the stored status is part of
// the filter, so a transition the lifecycle forbids simply matches
// nothing.
func (mdb *MongodbRepo) TransitionStatus(ctx context.Context, id, hostID uuid.UUID, to EventStatus) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, err
	}

	var allowedFrom []EventStatus
	for _, from := range []EventStatus{EventDraft, EventPublished} {
		if from.CanTransition(to) {
			allowedFrom = append(allowedFrom, from)
		}
	}
	if len(allowedFrom) == 0 {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{"status": to, "updated_at": now}
	if to == EventPublished {
		set["published_at"] = now
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = col.FindOneAndUpdate(ctx,
		bson.M{"id": id, "host_id": hostID, "status": bson.M{"$in": allowedFrom}},
		bson.M{"$set": set},
		opts,
	).Decode(&event)
	if err == nil {
		return &event, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to transition event status: %w", err)
	}

	existing, lookupErr := mdb.GetEventByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing.HostID != hostID {
		return nil, ErrNotAuthorized
	}
	return nil, ErrInvalidTransition
}
