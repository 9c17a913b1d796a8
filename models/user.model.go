package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a user's saved delivery address
type Address struct {
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// User represents an account in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   Address            `bson:"address" json:"address"`
	AvatarURL string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role      string             `bson:"role" json:"role"` // "user" or "admin"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	Name      string  `bson:"name" json:"name"`
	Phone     string  `bson:"phone" json:"phone"`
	Address   Address `bson:"address" json:"address"`
	AvatarURL string  `bson:"avatarUrl" json:"avatarUrl"`
}
