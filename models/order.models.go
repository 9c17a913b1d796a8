package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line-item snapshot taken at checkout. Product is a free-form
// reference and is not required to resolve to a catalog entry.
type OrderItem struct {
	Product  string  `bson:"product" json:"product"`
	Title    string  `bson:"title,omitempty" json:"title,omitempty"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// ShippingAddress is the delivery address attached to an order
type ShippingAddress struct {
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// Order represents a recorded purchase. Amounts are in major currency units.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Total           float64            `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
