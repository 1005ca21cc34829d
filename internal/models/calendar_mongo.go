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

func (mdb *MongodbRepo) CreateCalendar(ctx context.Context, calendar *Calendar) (*Calendar, error) {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return nil, err
	}

	if _, err := col.InsertOne(ctx, calendar); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to insert calendar: %w", err)
	}
	return calendar, nil
}

func (mdb *MongodbRepo) GetCalendars(ctx context.Context, ownerID *uuid.UUID) ([]*Calendar, error) {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"is_public": true}
	if ownerID != nil {
		filter = bson.M{"owner_id": *ownerID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer cursor.Close(ctx)

	var calendars []*Calendar
	if err := cursor.All(ctx, &calendars); err != nil {
		return nil, fmt.Errorf("failed to decode calendars: %w", err)
	}
	return calendars, nil
}

func (mdb *MongodbRepo) GetCalendarByID(ctx context.Context, id uuid.UUID) (*Calendar, error) {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return nil, err
	}

	var calendar Calendar
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&calendar); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return &calendar, nil
}

func (mdb *MongodbRepo) GetCalendarBySlug(ctx context.Context, slug string) (*Calendar, error) {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return nil, err
	}

	var calendar Calendar
	if err := col.FindOne(ctx, bson.M{"slug": slug}).Decode(&calendar); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get calendar by slug: %w", err)
	}
	return &calendar, nil
}

func (mdb *MongodbRepo) UpdateCalendar(ctx context.Context, id, ownerID uuid.UUID, updates map[string]any) (*Calendar, error) {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	for key, value := range updates {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var calendar Calendar
	err = col.FindOneAndUpdate(ctx,
		bson.M{"id": id, "owner_id": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(&calendar)
	if err == nil {
		return &calendar, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update calendar: %w", err)
	}

	if _, lookupErr := mdb.GetCalendarByID(ctx, id); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, ErrNotAuthorized
}

func (mdb *MongodbRepo) DeleteCalendar(ctx context.Context, id, ownerID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, DBName, CalendarsCol)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	if res.DeletedCount == 0 {
		if _, lookupErr := mdb.GetCalendarByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return ErrNotAuthorized
	}

	subs, err := mdb.GetCollection(ctx, DBName, SubscriptionsCol)
	if err != nil {
		return err
	}
	if _, err := subs.DeleteMany(ctx, bson.M{"calendar_id": id}); err != nil {
		return fmt.Errorf("failed to remove calendar subscriptions: %w", err)
	}
	return nil
}

// Subscribe inserts the subscription row and bumps subscriber_count in a
// single transaction; the unique (calendar_id, user_id) index turns a
// double subscribe into a conflict instead of a duplicate row.
func (mdb *MongodbRepo) Subscribe(ctx context.Context, calendarID, userID uuid.UUID) (*CalendarSubscription, error) {
	sub := &CalendarSubscription{
		ID:         uuid.New(),
		CalendarID: calendarID,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}

	_, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		calendars, err := mdb.GetCollection(sc, DBName, CalendarsCol)
		if err != nil {
			return nil, err
		}
		subs, err := mdb.GetCollection(sc, DBName, SubscriptionsCol)
		if err != nil {
			return nil, err
		}

		if _, err := subs.InsertOne(sc, sub); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrAlreadySubscribed
			}
			return nil, fmt.Errorf("failed to insert subscription: %w", err)
		}

		res, err := calendars.UpdateOne(sc,
			bson.M{"id": calendarID},
			bson.M{"$inc": bson.M{"subscriber_count": 1}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to increment subscriber count: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (mdb *MongodbRepo) Unsubscribe(ctx context.Context, calendarID, userID uuid.UUID) error {
	_, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		calendars, err := mdb.GetCollection(sc, DBName, CalendarsCol)
		if err != nil {
			return nil, err
		}
		subs, err := mdb.GetCollection(sc, DBName, SubscriptionsCol)
		if err != nil {
			return nil, err
		}

		res, err := subs.DeleteOne(sc, bson.M{"calendar_id": calendarID, "user_id": userID})
		if err != nil {
			return nil, fmt.Errorf("failed to delete subscription: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}

		if _, err := calendars.UpdateOne(sc,
			bson.M{"id": calendarID},
			bson.M{"$inc": bson.M{"subscriber_count": -1}},
		); err != nil {
			return nil, fmt.Errorf("failed to decrement subscriber count: %w", err)
		}
		return nil, nil
	})
	return err
}

func (mdb *MongodbRepo) GetSubscriptions(ctx context.Context, userID uuid.UUID) ([]*CalendarSubscription, error) {
	col, err := mdb.GetCollection(ctx, DBName, SubscriptionsCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*CalendarSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}
	return subs, nil
}
