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

type MongoProductStore struct {
	collection *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{collection: db.Collection(productCollectionName)}
}

func (s *MongoProductStore) Create(ctx context.Context, p *domain.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now()
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", translate(err))
	}
	zap.L().Info("inserted product", zap.String("id", p.ID.Hex()), zap.String("name", p.Name))
	return nil
}

func (s *MongoProductStore) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	cursor, err := s.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *MongoProductStore) List(ctx context.Context) ([]*domain.Product, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoProductStore) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.find(ctx, bson.M{"category": category})
}

func (s *MongoProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p domain.Product
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *MongoProductStore) FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []*domain.Product{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (s *MongoProductStore) updateOne(ctx context.Context, filter, set bson.M) (*domain.Product, error) {
	var p domain.Product
	err := s.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *MongoProductStore) UpdateVisibility(ctx context.Context, productID, visibility string) (*domain.Product, error) {
	return s.updateOne(ctx, bson.M{"productId": productID}, bson.M{"visibility": visibility})
}

func (s *MongoProductStore) UpdateStock(ctx context.Context, productID string, inStock, sold int) (*domain.Product, error) {
	return s.updateOne(ctx, bson.M{"productId": productID}, bson.M{
		"inStockValue":   inStock,
		"soldStockValue": sold,
	})
}

func (s *MongoProductStore) SetDisplayID(ctx context.Context, id, productID string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.updateOne(ctx, bson.M{"_id": oid}, bson.M{"productId": productID})
}

func (s *MongoProductStore) AdjustStock(ctx context.Context, id string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{"inStockValue": -quantity, "soldStockValue": quantity},
	})
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
