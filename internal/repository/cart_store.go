package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"merabestie-backend/internal/domain"
)

type MongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{collection: db.Collection(cartCollectionName)}
}

func (s *MongoCartStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	if cart.ProductsInCart == nil {
		cart.ProductsInCart = []domain.CartEntry{}
	}
	return &cart, nil
}

func (s *MongoCartStore) Push(ctx context.Context, userID string, entry domain.CartEntry) (*domain.Cart, error) {
	var cart domain.Cart
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$push": bson.M{"productsInCart": entry}},
		afterUpdate().SetUpsert(true),
	).Decode(&cart)
	if err != nil {
		return nil, fmt.Errorf("failed to push cart entry: %w", translate(err))
	}
	return &cart, nil
}

func (s *MongoCartStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "productsInCart.productId": productID},
		bson.M{"$set": bson.M{"productsInCart.$.quantity": quantity}},
	)
	if err != nil {
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCartStore) Pull(ctx context.Context, userID, productID string) (bool, error) {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"productsInCart": bson.M{"productId": productID}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to pull cart entry: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (s *MongoCartStore) Clear(ctx context.Context, userID string) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"productsInCart": []domain.CartEntry{}}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
