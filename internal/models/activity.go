package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ActivityDbName  = "locallore"
	ActivityColName = "user_activity"
)

// ActivityEntry mirrors one authenticated interaction into the
// per-user activity trail. It is a read model fed by the change bus,
// not the source of truth; the relational interactions table is.
type ActivityEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id" validate:"required"`
	EventID    string             `bson:"event_id" json:"event_id" validate:"required"`
	Type       string             `bson:"interaction_type" json:"interaction_type"`
	OccurredAt time.Time          `bson:"occurred_at" json:"occurred_at"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"` // TTL index field
}

type ActivityRepo interface {
	EnsureActivityIndexes(ctx context.Context) error
	RecordActivity(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType) error
	ListRecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]*ActivityEntry, error)
}

// EnsureActivityIndexes creates necessary indexes including TTL
func (mdb *MongodbRepo) EnsureActivityIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, ActivityDbName, ActivityColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		// TTL index - entries expire 30 days after occurred_at
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
		// One entry per (user, event, type); repeat interactions bump
		// occurred_at instead of appending
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "event_id", Value: 1},
				{Key: "interaction_type", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("user_event_type_unique"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "occurred_at", Value: -1},
			},
			Options: options.Index().SetName("user_occurred_at_idx"),
		},
	}

	_, err = col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("error creating indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) RecordActivity(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType) error {
	col, err := mdb.GetCollection(ctx, ActivityDbName, ActivityColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{
		"user_id":          userID.String(),
		"event_id":         eventID.String(),
		"interaction_type": string(interactionType),
	}
	update := bson.M{
		"$set": bson.M{
			"occurred_at": now,
			"expires_at":  now.Add(30 * 24 * time.Hour),
		},
		"$setOnInsert": filter,
	}

	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting activity entry: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListRecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]*ActivityEntry, error) {
	col, err := mdb.GetCollection(ctx, ActivityDbName, ActivityColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding activity entries: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []*ActivityEntry
	for cursor.Next(ctx) {
		var entry ActivityEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("error decoding activity entry: %v", err)
		}
		entries = append(entries, &entry)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return entries, nil
}
