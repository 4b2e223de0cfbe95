package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-report/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscription is a user's opt-in to periodic reports of one kind
type Subscription struct {
	UserID          string            `bson:"userId" json:"userId"`
	Kind            models.ReportKind `bson:"kind" json:"kind"`
	Email           string            `bson:"email,omitempty" json:"email,omitempty"` // Empty means no email delivery
	OptedInAt       time.Time         `bson:"optedInAt" json:"optedInAt"`
	LastTriggeredAt *time.Time        `bson:"lastTriggeredAt,omitempty" json:"lastTriggeredAt,omitempty"`
}

// AddSubscription creates or replaces the user's subscription for kind
func (c *MongoDBClient) AddSubscription(ctx context.Context, sub Subscription) error {
	if sub.OptedInAt.IsZero() {
		sub.OptedInAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"userId": sub.UserID, "kind": sub.Kind}
	update := bson.M{"$set": sub}

	if _, err := c.subscriptions.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add subscription: %w", err)
	}
	return nil
}

// RemoveSubscription deletes the subscription and reports whether one existed
func (c *MongoDBClient) RemoveSubscription(ctx context.Context, userID string, kind models.ReportKind) (bool, error) {
	result, err := c.subscriptions.DeleteOne(ctx, bson.M{"userId": userID, "kind": kind})
	if err != nil {
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// GetSubscription returns nil when the user is not subscribed to kind
func (c *MongoDBClient) GetSubscription(ctx context.Context, userID string, kind models.ReportKind) (*Subscription, error) {
	var sub Subscription
	err := c.subscriptions.FindOne(ctx, bson.M{"userId": userID, "kind": kind}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return &sub, nil
}

// ListSubscriptions returns every subscription of the given kind
func (c *MongoDBClient) ListSubscriptions(ctx context.Context, kind models.ReportKind) ([]Subscription, error) {
	subs := []Subscription{}
	if err := findAll(ctx, c.subscriptions, bson.M{"kind": kind}, &subs); err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	return subs, nil
}

// MarkTriggered records when the scheduler last enqueued a report for the subscription
func (c *MongoDBClient) MarkTriggered(ctx context.Context, userID string, kind models.ReportKind, at time.Time) error {
	_, err := c.subscriptions.UpdateOne(ctx,
		bson.M{"userId": userID, "kind": kind},
		bson.M{"$set": bson.M{"lastTriggeredAt": at}})
	if err != nil {
		return fmt.Errorf("failed to mark subscription triggered: %w", err)
	}
	return nil
}
