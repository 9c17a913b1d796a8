package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog entry
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Images        []string           `bson:"images" json:"images"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Tags          []string           `bson:"tags" json:"tags"`
	Rating        float64            `bson:"rating" json:"rating"`
	Stock         int                `bson:"stock" json:"stock"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductSort selects the ordering of a catalog listing
type ProductSort string

const (
	SortNone      ProductSort = ""
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortPopular   ProductSort = "popular"
)

// ProductQuery filters a catalog listing
type ProductQuery struct {
	Category string
	Sort     ProductSort
}

// ProductPatch carries a partial product update; nil fields are left unchanged
type ProductPatch struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Images        []string `json:"images"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"originalPrice"`
	Category      *string  `json:"category"`
	Tags          []string `json:"tags"`
	Rating        *float64 `json:"rating"`
	Stock         *int     `json:"stock"`
}

// Empty reports whether the patch changes nothing
func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Images == nil && p.Price == nil &&
		p.OriginalPrice == nil && p.Category == nil && p.Tags == nil && p.Rating == nil && p.Stock == nil
}
