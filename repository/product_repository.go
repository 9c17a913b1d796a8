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

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) List(ctx context.Context, q models.ProductQuery, limit int64) ([]models.Product, error) {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}

	opts := options.Find().SetLimit(limit)
	switch q.Sort {
	case models.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case models.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	case models.SortPopular:
		opts.SetSort(bson.D{{Key: "rating", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	stampProduct(product, time.Now().UTC())
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	set := patchFields(patch)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *MongoProductRepository) InsertMany(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(products))
	for i := range products {
		stampProduct(&products[i], now)
		docs = append(docs, products[i])
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	for i, id := range res.InsertedIDs {
		products[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

func (r *MongoProductRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func stampProduct(p *models.Product, now time.Time) {
	p.ID = primitive.NilObjectID
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

func patchFields(p models.ProductPatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.OriginalPrice != nil {
		set["originalPrice"] = *p.OriginalPrice
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Tags != nil {
		set["tags"] = p.Tags
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	return set
}
