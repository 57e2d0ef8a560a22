package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"merabestie-backend/internal/domain"
)

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection(userCollectionName)}
}

func (s *MongoUserStore) Create(ctx context.Context, u *domain.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()
	if _, err := s.collection.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", translate(err))
	}
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := s.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *MongoUserStore) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"userId": userID})
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) ExistsUserID(ctx context.Context, userID string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"userId": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user id: %w", err)
	}
	return n > 0, nil
}

func (s *MongoUserStore) List(ctx context.Context) ([]*domain.User, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) SetAccountStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	var u domain.User
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"accountStatus": status}},
		afterUpdate(),
	).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

type MongoSellerStore struct {
	collection *mongo.Collection
}

func NewMongoSellerStore(db *mongo.Database) *MongoSellerStore {
	return &MongoSellerStore{collection: db.Collection(sellerCollectionName)}
}

func (s *MongoSellerStore) Create(ctx context.Context, seller *domain.Seller) error {
	if seller.ID.IsZero() {
		seller.ID = primitive.NewObjectID()
	}
	seller.CreatedAt = time.Now()
	if _, err := s.collection.InsertOne(ctx, seller); err != nil {
		return fmt.Errorf("failed to insert seller: %w", translate(err))
	}
	return nil
}

func (s *MongoSellerStore) findOne(ctx context.Context, filter bson.M) (*domain.Seller, error) {
	var seller domain.Seller
	if err := s.collection.FindOne(ctx, filter).Decode(&seller); err != nil {
		return nil, translate(err)
	}
	return &seller, nil
}

func (s *MongoSellerStore) GetByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoSellerStore) GetByPhone(ctx context.Context, phone string) (*domain.Seller, error) {
	return s.findOne(ctx, bson.M{"phoneNumber": phone})
}

func (s *MongoSellerStore) ExistsSellerID(ctx context.Context, sellerID string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"sellerId": sellerID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check seller id: %w", err)
	}
	return n > 0, nil
}
