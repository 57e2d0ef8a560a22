package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"merabestie-backend/internal/domain"
)

type MongoOrderStore struct {
	collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{collection: db.Collection(orderCollectionName)}
}

func (s *MongoOrderStore) Insert(ctx context.Context, o *domain.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", translate(err))
	}
	zap.L().Info("inserted order",
		zap.String("orderId", o.OrderID),
		zap.String("trackingId", o.TrackingID),
		zap.String("userRef", o.UserID))
	return nil
}

func (s *MongoOrderStore) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"orderId": orderID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check order id: %w", err)
	}
	return n > 0, nil
}

func (s *MongoOrderStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	if err := s.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *MongoOrderStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userRef string) ([]*domain.Order, error) {
	return s.find(ctx, bson.M{"userId": userRef}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *MongoOrderStore) List(ctx context.Context) ([]*domain.Order, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *MongoOrderStore) ListStale(ctx context.Context, status domain.OrderStatus, cutoff time.Time, limit int) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, bson.M{"status": status, "updatedAt": bson.M{"$lt": cutoff}}, opts)
}

func (s *MongoOrderStore) Transition(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"orderId": orderID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to move order %s to %s: %w", orderID, to, err)
	}
	return result.ModifiedCount == 1, nil
}

func (s *MongoOrderStore) RecordNotifyFailure(ctx context.Context, orderID string, cause string) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"orderId": orderID},
		bson.M{
			"$inc": bson.M{"notifyAttempts": 1},
			"$set": bson.M{"lastNotifyError": cause, "updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record notify failure: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrderStore) MarkStockApplied(ctx context.Context, orderID string) (bool, error) {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"orderId": orderID, "stockApplied": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"stockApplied": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark stock applied: %w", err)
	}
	return result.ModifiedCount == 1, nil
}
