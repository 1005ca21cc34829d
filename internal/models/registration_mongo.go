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

// claimCapacitySlot conditionally increments registration_count; the
// capacity comparison lives inside the filter, so two racing guests can
// never both take the last slot.
func claimCapacitySlot(sc mongo.SessionContext, events *mongo.Collection, eventID uuid.UUID) (bool, error) {
	res, err := events.UpdateOne(sc,
		bson.M{
			"id": eventID,
			"$or": bson.A{
				bson.M{"capacity": bson.M{"$exists": false}},
				bson.M{"capacity": nil},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$registration_count", "$capacity"}}},
			},
		},
		bson.M{"$inc": bson.M{"registration_count": 1}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim capacity slot: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// Register runs the admission algorithm inside one transaction: the
// capacity claim and the registration insert commit or roll back as a
// unit, and the partial unique index rejects a second active
// registration for the same (event, user) pair.
func (mdb *MongodbRepo) Register(ctx context.Context, input RegisterForEventInput, userID uuid.UUID) (*Registration, error) {
	result, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		events, err := mdb.GetCollection(sc, DBName, EventsCol)
		if err != nil {
			return nil, err
		}
		regs, err := mdb.GetCollection(sc, DBName, RegistrationsCol)
		if err != nil {
			return nil, err
		}

		var event Event
		if err := events.FindOne(sc, bson.M{"id": input.EventID}).Decode(&event); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load event: %w", err)
		}

		// The duplicate check has to precede the capacity decision: a
		// guest who already holds an active registration on a full event
		// is a conflict, not a capacity rejection. The unique index
		// backstops the race between the check and the insert.
		dup, err := regs.CountDocuments(sc, bson.M{
			"event_id": input.EventID,
			"user_id":  userID,
			"status":   bson.M{"$ne": RegistrationCancelled},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check existing registration: %w", err)
		}
		if dup > 0 {
			return nil, ErrAlreadyRegistered
		}

		status := RegistrationApproved
		if event.RequireApproval {
			status = RegistrationPending
		} else {
			claimed, err := claimCapacitySlot(sc, events, input.EventID)
			if err != nil {
				return nil, err
			}
			if !claimed {
				if !event.AllowWaitlist {
					return nil, ErrAtCapacity
				}
				status = RegistrationWaitlist
			}
		}

		paymentStatus := PaymentPaid
		if event.IsPaid {
			paymentStatus = PaymentPending
		}

		now := time.Now()
		reg := &Registration{
			ID:            uuid.New(),
			EventID:       input.EventID,
			UserID:        userID,
			TicketTypeID:  input.TicketTypeID,
			Status:        status,
			PaymentStatus: paymentStatus,
			FormResponses: input.FormResponses,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := regs.InsertOne(sc, reg); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrAlreadyRegistered
			}
			return nil, fmt.Errorf("failed to insert registration: %w", err)
		}
		return reg, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Registration), nil
}

func (mdb *MongodbRepo) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		events, err := mdb.GetCollection(sc, DBName, EventsCol)
		if err != nil {
			return nil, err
		}
		regs, err := mdb.GetCollection(sc, DBName, RegistrationsCol)
		if err != nil {
			return nil, err
		}

		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
		var reg Registration
		err = regs.FindOne(sc, bson.M{"event_id": eventID, "user_id": userID}, opts).Decode(&reg)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load registration: %w", err)
		}

		// Idempotent on a terminal cancel.
		if reg.Status == RegistrationCancelled {
			return nil, nil
		}

		if _, err := regs.UpdateOne(sc,
			bson.M{"id": reg.ID},
			bson.M{"$set": bson.M{"status": RegistrationCancelled, "updated_at": time.Now()}},
		); err != nil {
			return nil, fmt.Errorf("failed to cancel registration: %w", err)
		}

		if reg.Status.CountsTowardCapacity() {
			if _, err := events.UpdateOne(sc,
				bson.M{"id": eventID},
				bson.M{"$inc": bson.M{"registration_count": -1}},
			); err != nil {
				return nil, fmt.Errorf("failed to release capacity slot: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

func (mdb *MongodbRepo) GetMyRegistrations(ctx context.Context, userID uuid.UUID) ([]*Registration, error) {
	col, err := mdb.GetCollection(ctx, DBName, RegistrationsCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{
		"user_id": userID,
		"status":  bson.M{"$ne": RegistrationCancelled},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer cursor.Close(ctx)

	var regs []*Registration
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	return regs, nil
}

func (mdb *MongodbRepo) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error) {
	col, err := mdb.GetCollection(ctx, DBName, RegistrationsCol)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var reg Registration
	err = col.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}, opts).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (mdb *MongodbRepo) GetEventGuests(ctx context.Context, eventID uuid.UUID) ([]*Registration, error) {
	col, err := mdb.GetCollection(ctx, DBName, RegistrationsCol)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %w", err)
	}
	defer cursor.Close(ctx)

	var guests []*Registration
	if err := cursor.All(ctx, &guests); err != nil {
		return nil, fmt.Errorf("failed to decode guests: %w", err)
	}
	return guests, nil
}

func (mdb *MongodbRepo) GetRegistrationByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	col, err := mdb.GetCollection(ctx, DBName, RegistrationsCol)
	if err != nil {
		return nil, err
	}

	var reg Registration
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// UpdateStatus pins the expected current status into the filter and
// adjusts the event counter in the same transaction whenever the change
// crosses the counting set boundary.
func (mdb *MongodbRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to RegistrationStatus) (*Registration, error) {
	if !from.CanTransition(to) {
		return nil, ErrInvalidTransition
	}

	result, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		events, err := mdb.GetCollection(sc, DBName, EventsCol)
		if err != nil {
			return nil, err
		}
		regs, err := mdb.GetCollection(sc, DBName, RegistrationsCol)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		set := bson.M{"status": to, "updated_at": now}
		if to == RegistrationCheckedIn {
			set["checked_in_at"] = now
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var reg Registration
		err = regs.FindOneAndUpdate(sc,
			bson.M{"id": id, "status": from},
			bson.M{"$set": set},
			opts,
		).Decode(&reg)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				if _, lookupErr := mdb.GetRegistrationByID(sc, id); lookupErr != nil {
					return nil, lookupErr
				}
				return nil, ErrInvalidTransition
			}
			return nil, fmt.Errorf("failed to update guest status: %w", err)
		}

		var delta int
		if !from.CountsTowardCapacity() && to.CountsTowardCapacity() {
			delta = 1
		}
		if from.CountsTowardCapacity() && !to.CountsTowardCapacity() {
			delta = -1
		}
		if delta != 0 {
			if _, err := events.UpdateOne(sc,
				bson.M{"id": reg.EventID},
				bson.M{"$inc": bson.M{"registration_count": delta}},
			); err != nil {
				return nil, fmt.Errorf("failed to adjust registration count: %w", err)
			}
		}
		return &reg, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Registration), nil
}

func (mdb *MongodbRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, paymentIntentID string) (*Registration, error) {
	col, err := mdb.GetCollection(ctx, DBName, RegistrationsCol)
	if err != nil {
		return nil, err
	}

	var expected []PaymentStatus
	switch status {
	case PaymentPaid, PaymentFailed:
		expected = []PaymentStatus{PaymentPending}
	case PaymentRefunded:
		expected = []PaymentStatus{PaymentPaid}
	default:
		return nil, ErrInvalidTransition
	}

	set := bson.M{"payment_status": status, "updated_at": time.Now()}
	if paymentIntentID != "" {
		set["payment_intent_id"] = paymentIntentID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var reg Registration
	err = col.FindOneAndUpdate(ctx,
		bson.M{"id": id, "payment_status": bson.M{"$in": expected}},
		bson.M{"$set": set},
		opts,
	).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, lookupErr := mdb.GetRegistrationByID(ctx, id); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return &reg, nil
}

func (mdb *MongodbRepo) CreateInvitations(ctx context.Context, invitations []*Invitation) ([]*Invitation, error) {
	col, err := mdb.GetCollection(ctx, DBName, InvitationsCol)
	if err != nil {
		return nil, err
	}

	docs := make([]any, 0, len(invitations))
	for _, inv := range invitations {
		docs = append(docs, inv)
	}
	if _, err := col.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to insert invitations: %w", err)
	}
	return invitations, nil
}
