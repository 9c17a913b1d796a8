// Package cache holds read-through caches for catalog reads.
package cache

import (
	"context"
	"errors"

	"brilliora/models"
)

// ProductCache caches catalog listings and single products
type ProductCache interface {
	GetList(ctx context.Context, q models.ProductQuery) ([]models.Product, error)
	SetList(ctx context.Context, q models.ProductQuery, products []models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, id string, product *models.Product) error
	// Invalidate drops the product and every cached listing
	Invalidate(ctx context.Context, id string) error
}

var ErrCacheMiss = errors.New("cache miss")
