package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Advert is a property listing. Owner holds the hex id of the posting user.
type Advert struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	Price       float64            `bson:"price"         json:"price"`
	Category    string             `bson:"category"      json:"category"`
	Location    string             `bson:"location"      json:"location"`
	ImageURL    string             `bson:"image_url"     json:"image_url"`
	Owner       string             `bson:"owner"         json:"owner"`
	CreatedAt   time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"    json:"updated_at"`
}
