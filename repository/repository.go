// Package repository persists orders, products and users in MongoDB.
package repository

import (
	"context"
	"errors"

	"brilliora/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// OrderRepository stores orders. Every read and write other than Create is
// scoped to the owning user.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Order, error)
	FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	UpdateStatusForUser(ctx context.Context, id, userID primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// ProductRepository stores the catalog
type ProductRepository interface {
	List(ctx context.Context, q models.ProductQuery, limit int64) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, products []models.Product) error
}

// UserRepository stores accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindFirst(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// Indexer is implemented by repositories that own collection indexes
type Indexer interface {
	CreateIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes of every given repository
func EnsureIndexes(ctx context.Context, repos ...Indexer) error {
	for _, r := range repos {
		if err := r.CreateIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

// IsTimeout reports whether err came from an expired deadline
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err)
}
