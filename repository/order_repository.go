package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brilliora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.ID = primitive.NilObjectID
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}

	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) UpdateStatusForUser(ctx context.Context, id, userID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, update, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *MongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
