package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Category string

const (
	CategoryRunning    Category = "running"
	CategoryBasketball Category = "basketball"
	CategoryLifestyle  Category = "lifestyle"
	CategoryTraining   Category = "training"
)

type Sneaker struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description" json:"description"`
	Category    Category      `bson:"category" json:"category"`
	Price       *float64      `bson:"price" json:"price"`
	Stock       *int          `bson:"stock" json:"stock"`
	Featured    bool          `bson:"featured" json:"featured"`
	ImageURL    string        `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updated_at"`
}
