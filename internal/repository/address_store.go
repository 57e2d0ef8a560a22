package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"merabestie-backend/internal/domain"
)

type MongoAddressStore struct {
	collection *mongo.Collection
}

func NewMongoAddressStore(db *mongo.Database) *MongoAddressStore {
	return &MongoAddressStore{collection: db.Collection(addressCollectionName)}
}

func (s *MongoAddressStore) Upsert(ctx context.Context, userID, address string) (*domain.Address, error) {
	var a domain.Address
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"address": address}},
		afterUpdate().SetUpsert(true),
	).Decode(&a)
	if err != nil {
		return nil, fmt.Errorf("failed to save address: %w", translate(err))
	}
	return &a, nil
}

func (s *MongoAddressStore) Get(ctx context.Context, userID string) (*domain.Address, error) {
	var a domain.Address
	if err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
