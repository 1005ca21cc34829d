package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DBName           = "blend"
	EventsCol        = "events"
	CalendarsCol     = "calendars"
	SubscriptionsCol = "calendar_subscriptions"
	RegistrationsCol = "registrations"
	InvitationsCol   = "invitations"
)

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, ErrBackendUnavailable
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

// EnsureIndexes creates the uniqueness constraints the domain invariants
// rely on: one slug per namespace, one active registration per
// (event, user), one subscription per (calendar, user).
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	db := mdb.mongodbClient.Database(DBName)

	_, err := db.Collection(EventsCol).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "start_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}

	_, err = db.Collection(CalendarsCol).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create calendar indexes: %w", err)
	}

	_, err = db.Collection(SubscriptionsCol).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "calendar_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}

	// Partial unique index: cancelled registrations stay behind as audit
	// rows, so uniqueness only covers the active statuses.
	_, err = db.Collection(RegistrationsCol).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
			"status": bson.M{"$in": []string{
				string(RegistrationPending),
				string(RegistrationApproved),
				string(RegistrationWaitlist),
				string(RegistrationCheckedIn),
			}},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create registration indexes: %w", err)
	}

	return nil
}

func (mdb *MongodbRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (any, error)) (any, error) {
	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}
